package cld

import (
	"sort"

	"gosigtest/domain/system"
)

// HighlightCount is a system and the number of highlight sets naming it.
type HighlightCount struct {
	System system.Descriptor `json:"system"`
	Count  int               `json:"count"`
}

// IntersectHighlights counts, across several near-best sets produced on
// different corpora, how often each system was highlighted. Corpus fields
// are stripped before comparing so the same system on two corpora is
// counted once per set. Results are ordered by descending count, then key.
func IntersectHighlights(sets [][]system.Descriptor) []HighlightCount {
	counts := make(map[string]*HighlightCount)
	for _, set := range sets {
		seen := make(map[string]bool, len(set))
		for _, d := range set {
			stripped := d.WithoutCorpus()
			key := stripped.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			if hc, ok := counts[key]; ok {
				hc.Count++
				continue
			}
			counts[key] = &HighlightCount{System: stripped, Count: 1}
		}
	}

	out := make([]HighlightCount, 0, len(counts))
	for _, hc := range counts {
		out = append(out, *hc)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		return out[a].System.Key() < out[b].System.Key()
	})
	return out
}
