package model

import "sort"

// ScoreBreakdown holds the per-factor contributions to a match score.
type ScoreBreakdown struct {
	Roast    int `json:"roast"`
	Flavor   int `json:"flavor"`
	Style    int `json:"style"`
	Priority int `json:"priority"`
}

// Total sums the factors.
func (b ScoreBreakdown) Total() int {
	return b.Roast + b.Flavor + b.Style + b.Priority
}

// ScoredCandidate is a coffee with its score for one preference set.
type ScoredCandidate struct {
	Coffee    Coffee         `json:"coffee"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Score     int            `json:"score"`
}

// ScoredCandidates supports ordering by score.
type ScoredCandidates []ScoredCandidate

// Len implements sort.Interface.
func (s ScoredCandidates) Len() int {
	return len(s)
}

// Less implements sort.Interface - higher scores first, then lower priority.
func (s ScoredCandidates) Less(i, j int) bool {
	if s[i].Score != s[j].Score {
		return s[i].Score > s[j].Score
	}
	return s[i].Coffee.Priority < s[j].Coffee.Priority
}

// Swap implements sort.Interface.
func (s ScoredCandidates) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

// Sort orders candidates in place. Equal elements keep their input order.
func (s ScoredCandidates) Sort() {
	sort.Stable(s)
}

// Top returns the best candidate, or nil if empty.
func (s ScoredCandidates) Top() *ScoredCandidate {
	if len(s) == 0 {
		return nil
	}
	s.Sort()
	return &s[0]
}

// Coffees returns the candidates' coffees in their current order.
func (s ScoredCandidates) Coffees() []Coffee {
	out := make([]Coffee, len(s))
	for i, c := range s {
		out[i] = c.Coffee
	}
	return out
}
