package contracts

import "sort"

// RejectionHistogram counts rejected tickers per reason code
type RejectionHistogram map[string]int

// ReasonCount is one histogram entry
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// Sorted returns entries by count descending, then reason ascending
func (h RejectionHistogram) Sorted() []ReasonCount {
	out := make([]ReasonCount, 0, len(h))
	for reason, count := range h {
		out = append(out, ReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}

// Total returns the sum of all counts
func (h RejectionHistogram) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// PassRateSummary summarizes a filter pass
type PassRateSummary struct {
	Input    int     `json:"input"`
	Passed   int     `json:"passed"`
	Rejected int     `json:"rejected"`
	PassRate float64 `json:"pass_rate"` // percent
}

// NewPassRateSummary builds a summary from counts
func NewPassRateSummary(input, passed int) PassRateSummary {
	s := PassRateSummary{Input: input, Passed: passed, Rejected: input - passed}
	if input > 0 {
		s.PassRate = float64(passed) / float64(input) * 100
	}
	return s
}

// FilterResult is the outcome of the bulk pre-filter
// ⭐ SSOT: S1 → S2 필터 결과 전달
type FilterResult struct {
	Passed    []string           `json:"passed"`
	Rejected  map[string]string  `json:"rejected"`
	Histogram RejectionHistogram `json:"histogram"`
	Summary   PassRateSummary    `json:"summary"`
}
