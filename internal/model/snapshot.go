package model

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the ranked tool list computed once at startup. It is never
// modified after construction, so handlers can share it without locking.
type Snapshot struct {
	tools []Tool
	body  []byte
}

// NewSnapshot freezes tools and pre-encodes the JSON array served to clients.
func NewSnapshot(tools []Tool) (*Snapshot, error) {
	frozen := make([]Tool, len(tools))
	for i, t := range tools {
		frozen[i] = t.Clone()
	}
	body, err := json.Marshal(frozen)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return &Snapshot{tools: frozen, body: body}, nil
}

// Len returns the number of tools in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tools)
}

// Empty reports whether there is nothing to serve.
func (s *Snapshot) Empty() bool {
	return s.Len() == 0
}

// Tools returns a copy of the snapshot contents.
func (s *Snapshot) Tools() []Tool {
	if s == nil {
		return nil
	}
	out := make([]Tool, len(s.tools))
	for i, t := range s.tools {
		out[i] = t.Clone()
	}
	return out
}

// RankedCount returns how many tools carry a rank.
func (s *Snapshot) RankedCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, t := range s.tools {
		if t.Ranked() {
			n++
		}
	}
	return n
}

// JSON returns the encoded tool array. Callers must not modify it.
func (s *Snapshot) JSON() []byte {
	if s == nil {
		return []byte("[]")
	}
	return s.body
}
