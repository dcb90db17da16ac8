package domain

// Recommendation is the validation gate's decision for an extraction.
type Recommendation string

const (
	// RecommendStore accepts the extraction for indexing.
	RecommendStore Recommendation = "store"

	// RecommendReview stores nothing and asks a human to look.
	RecommendReview Recommendation = "review"

	// RecommendReject discards the extraction as unusable.
	RecommendReject Recommendation = "reject"
)

// Thresholds parameterises the validation gate. A result below Review is
// rejected, between Review and Accept it is sent to review, at or above
// Accept it is stored (absent anomaly flags).
type Thresholds struct {
	// Review is the minimum confidence to avoid outright rejection.
	Review float64

	// Accept is the minimum confidence for automatic storage.
	Accept float64

	// MinWords is the minimum word count for a usable extraction.
	MinWords int

	// RoundNumberModulus flags grand totals exactly divisible by this
	// value as a round-number anomaly. Zero disables the check.
	RoundNumberModulus int
}

// DefaultThresholds mirrors the gate's shipped policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Review:             0.4,
		Accept:             0.6,
		MinWords:           5,
		RoundNumberModulus: 10000,
	}
}

// ValidationFlags records the individual anomaly checks. Flags are
// informational; only a subset influences the recommendation.
type ValidationFlags struct {
	LowConfidence         bool
	VeryLowWordCount      bool
	NoGrandTotal          bool
	NoDDOCode             bool
	BalanceMismatch       bool
	SuspiciousRoundNumber bool
}

// Any reports whether any anomaly flag is set.
func (f ValidationFlags) Any() bool {
	return f.LowConfidence || f.VeryLowWordCount || f.NoGrandTotal ||
		f.NoDDOCode || f.BalanceMismatch || f.SuspiciousRoundNumber
}

// ValidationVerdict is the gate's output: a pure function of an
// ExtractionResult and Thresholds.
type ValidationVerdict struct {
	// Recommendation is store, review or reject.
	Recommendation Recommendation

	// HasText is true when the trimmed extraction text is non-empty.
	HasText bool

	// ConfidenceOK is true when confidence clears the review threshold.
	ConfidenceOK bool

	// Flags holds the individual anomaly checks.
	Flags ValidationFlags

	// Warnings lists human-readable notes. Warnings never change the
	// recommendation on their own.
	Warnings []string
}
