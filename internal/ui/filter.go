package ui

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"question-index/internal/mb"
)

// FilterConfig bundles tuning parameters for the question search.
type FilterConfig struct {
	MinCoverage float64 // minimal share of the query that must match
	MaxSpread   int     // maximal distance between first and last match index
	MaxResults  int     // upper limit of returned results
}

// defaultFilterConfig keeps fuzzy results tight enough for short names.
var defaultFilterConfig = FilterConfig{
	MinCoverage: 0.6,
	MaxSpread:   40,
	MaxResults:  500,
}

// searchBase lower-cases the searchable text of each card.
func searchBase(cards []mb.Card) []string {
	base := make([]string, len(cards))
	for i, c := range cards {
		text := c.Name
		if c.Description != "" {
			text += " " + c.Description
		}
		base[i] = strings.ToLower(text)
	}
	return base
}

// filterCards returns indices into cards matching q. An empty query keeps
// everything; queries of one or two runes use substring matching, longer
// ones fuzzy matching.
func filterCards(cards []mb.Card, q string, cfg FilterConfig) []int {
	q = strings.ToLower(strings.TrimSpace(q))
	idx := make([]int, len(cards))
	for i := range cards {
		idx[i] = i
	}
	if q == "" {
		return idx
	}
	base := searchBase(cards)
	if len([]rune(q)) <= 2 {
		return filterBySubstring(q, base, idx, cfg)
	}
	return filterByFuzzy(q, base, idx, cfg)
}

// filterBySubstring keeps entries of idx whose base text contains q.
func filterBySubstring(q string, base []string, idx []int, cfg FilterConfig) []int {
	sub := make([]int, 0, min(cfg.MaxResults, len(idx)))
	for _, i := range idx {
		if strings.Contains(base[i], q) {
			sub = append(sub, i)
			if len(sub) >= cfg.MaxResults {
				break
			}
		}
	}
	return sub
}

// filterByFuzzy ranks idx by fuzzy score and drops weak matches by coverage
// and spread. When every match is weak the best ones are kept anyway.
func filterByFuzzy(q string, base []string, idx []int, cfg FilterConfig) []int {
	subset := make([]string, len(idx))
	for j, i := range idx {
		subset[j] = base[i]
	}
	matches := fuzzy.Find(q, subset)

	pruned := make([]int, 0, len(matches))
	for _, mt := range matches {
		if matchCoverage(q, mt) < cfg.MinCoverage || matchSpread(mt) > cfg.MaxSpread {
			continue
		}
		pruned = append(pruned, idx[mt.Index])
		if len(pruned) >= cfg.MaxResults {
			break
		}
	}
	if len(pruned) == 0 {
		for i := 0; i < len(matches) && i < cfg.MaxResults; i++ {
			pruned = append(pruned, idx[matches[i].Index])
		}
	}
	return pruned
}

// matchCoverage returns the ratio of matched characters to the query length.
func matchCoverage(q string, m fuzzy.Match) float64 {
	if len(q) == 0 {
		return 1
	}
	return float64(len(m.MatchedIndexes)) / float64(len(q))
}

// matchSpread returns the distance between the first and last matched index.
func matchSpread(m fuzzy.Match) int {
	if len(m.MatchedIndexes) == 0 {
		return 0
	}
	return m.MatchedIndexes[len(m.MatchedIndexes)-1] - m.MatchedIndexes[0]
}
