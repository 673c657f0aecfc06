package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ToolType classifies a catalog entry.
type ToolType string

const (
	TypeOpenSource  ToolType = "Open-Source"
	TypeProprietary ToolType = "Proprietary"
)

// PopularityUnavailable is the popularity shown when enrichment was skipped or failed.
const PopularityUnavailable = "N/A"

// Catalog keys the backend reads or writes. Everything else passes through untouched.
const (
	KeyName       = "Name"
	KeyType       = "Type"
	KeyRepo       = "Repo"
	KeyPopularity = "Popularity"
	KeyStars      = "Stars"
	KeyRank       = "Rank"
)

// Tool is one catalog entry plus the fields added during enrichment and ranking.
type Tool struct {
	Name       string
	Type       ToolType
	Repo       string // owner/name, only meaningful for open-source tools
	Popularity string
	Stars      int
	Rank       int // 1-based; zero means unranked

	fields map[string]any
}

// NewTool builds a Tool from a raw catalog object. Known keys that are missing
// or not strings decode as empty values.
func NewTool(fields map[string]any) Tool {
	if fields == nil {
		fields = map[string]any{}
	}
	return Tool{
		Name:       stringField(fields, KeyName),
		Type:       ToolType(stringField(fields, KeyType)),
		Repo:       stringField(fields, KeyRepo),
		Popularity: stringField(fields, KeyPopularity),
		fields:     fields,
	}
}

func stringField(fields map[string]any, key string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}

// IsOpenSource reports whether the tool takes part in enrichment and ranking.
func (t Tool) IsOpenSource() bool {
	return t.Type == TypeOpenSource
}

// Ranked reports whether a rank has been assigned.
func (t Tool) Ranked() bool {
	return t.Rank > 0
}

// HasCatalogPopularity reports whether the catalog entry carried its own
// Popularity key, whatever its value.
func (t Tool) HasCatalogPopularity() bool {
	_, ok := t.fields[KeyPopularity]
	return ok
}

// Field returns a pass-through catalog value such as "Best For".
func (t Tool) Field(key string) (any, bool) {
	v, ok := t.fields[key]
	return v, ok
}

// Clone returns a copy that does not share the pass-through map.
func (t Tool) Clone() Tool {
	out := t
	out.fields = make(map[string]any, len(t.fields))
	for k, v := range t.fields {
		out.fields[k] = v
	}
	return out
}

// MarshalJSON writes the original catalog object with the enrichment keys
// applied. Keys come out sorted.
func (t Tool) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.fields)+3)
	for k, v := range t.fields {
		out[k] = v
	}
	if t.Name != "" {
		out[KeyName] = t.Name
	}
	if t.Type != "" {
		out[KeyType] = string(t.Type)
	}
	if t.Repo != "" {
		out[KeyRepo] = t.Repo
	}
	// A catalog Popularity that is not a string (or is empty) is kept as-is
	// unless enrichment replaced it.
	if t.Popularity != "" || !t.HasCatalogPopularity() {
		out[KeyPopularity] = t.Popularity
	}
	out[KeyStars] = t.Stars
	if t.Ranked() {
		out[KeyRank] = t.Rank
	} else {
		delete(out, KeyRank)
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts any JSON object. Numbers are kept as json.Number so
// they are re-emitted exactly.
func (t *Tool) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return fmt.Errorf("decode tool: %w", err)
	}
	*t = NewTool(fields)
	if n, ok := fields[KeyStars].(json.Number); ok {
		if v, err := n.Int64(); err == nil {
			t.Stars = int(v)
		}
	}
	return nil
}
