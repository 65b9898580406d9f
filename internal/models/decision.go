package models

// Category sentinels used alongside the configured category set.
const (
	CategoryNone    = "none"    // rejected keywords carry no category
	CategoryUnknown = "unknown" // model named a category outside the allow-list
)

// Decision is the outcome of classifying a single keyword.
// A rejected decision always has Category "none" and CategoryConfidence 0.
type Decision struct {
	Keyword            string `json:"keyword"`
	RelevanceAccepted  bool   `json:"relevance_accepted"`
	RelevanceScore     int    `json:"relevance_score"`
	Category           string `json:"category"`
	CategoryConfidence int    `json:"category_confidence"`
	Reason             string `json:"reason,omitempty"` // only set by the two-call classifier
}

// DefaultReject returns the decision used when the model call or its parsing fails.
func DefaultReject(keyword string) Decision {
	return Decision{
		Keyword:  keyword,
		Category: CategoryNone,
	}
}

// Normalize enforces the rejected-keyword invariant.
func (d Decision) Normalize() Decision {
	if !d.RelevanceAccepted {
		d.Category = CategoryNone
		d.CategoryConfidence = 0
	}
	return d
}
