package service

import (
	"sort"

	"github.com/wabisaby/toolrank/internal/model"
)

// Rank orders open-source tools by stars (highest first, ties keep catalog
// order) and numbers them from 1. Every other tool follows, unranked, in
// catalog order.
func Rank(tools []model.Tool) []model.Tool {
	if len(tools) == 0 {
		return []model.Tool{}
	}

	openSource := make([]model.Tool, 0, len(tools))
	var rest []model.Tool
	for _, t := range tools {
		if t.IsOpenSource() {
			openSource = append(openSource, t)
			continue
		}
		t.Rank = 0
		rest = append(rest, t)
	}

	sort.SliceStable(openSource, func(i, j int) bool {
		return openSource[i].Stars > openSource[j].Stars
	})
	for i := range openSource {
		openSource[i].Rank = i + 1
	}

	return append(openSource, rest...)
}
