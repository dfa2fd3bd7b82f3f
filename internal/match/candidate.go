package match

import (
	"sort"
)

// DefaultThreshold is the minimum score Suggest accepts.
const DefaultThreshold = 0.6

// Candidate is a known name scored against a reference.
type Candidate struct {
	Name  string
	Score float64 // normalized similarity (0-1)
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// RankCandidates scores every known name against ref and returns them
// sorted best first. Exact duplicates in known are scored once.
func RankCandidates(ref string, known []string) CandidateList {
	seen := make(map[string]struct{}, len(known))
	candidates := make(CandidateList, 0, len(known))

	for _, name := range known {
		if _, ok := seen[name]; ok {
			continue
		}

		seen[name] = struct{}{}

		candidates = append(candidates, Candidate{Name: name, Score: RefScore(ref, name)})
	}

	sort.Sort(candidates)

	return candidates
}

// Suggest returns up to n known names that look like ref, best first.
// Names scoring below DefaultThreshold, and ref itself, are never returned.
func Suggest(ref string, known []string, n int) []string {
	ranked := RankCandidates(ref, known).AboveThreshold(DefaultThreshold).Top(n)

	out := make([]string, 0, len(ranked))
	for _, c := range ranked {
		if c.Name == ref {
			continue
		}

		out = append(out, c.Name)
	}

	return out
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by score descending, then by name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Name < c[j].Name
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n < 0 || n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// AboveThreshold returns candidates with score at or above the threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}

	return result
}
