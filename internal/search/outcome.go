package search

import "replay/internal/ranker"

// Kind classifies a search result.
type Kind int

const (
	// Empty means the feeds were searched and nothing acceptable was found.
	Empty Kind = iota
	// Found means at least one ranked candidate is available.
	Found
	// QuotaExhausted means the search could not run because every key is spent.
	QuotaExhausted
	// Transient means every feed tried failed for reasons other than quota.
	Transient
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Found:
		return "found"
	case QuotaExhausted:
		return "quota_exhausted"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}

// Outcome is the explicit result of a search.
type Outcome struct {
	Kind       Kind
	Candidates []ranker.Candidate
	// Channel is the feed that produced Candidates.
	Channel string
	Err     error
}

// Top returns the best candidate of a Found outcome.
func (o Outcome) Top() (ranker.Candidate, bool) {
	if o.Kind != Found || len(o.Candidates) == 0 {
		return ranker.Candidate{}, false
	}
	return o.Candidates[0], true
}
