package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
	"github.com/docuflow-labs/docuflow/internal/logger"
)

// Validate scores an extraction and returns an accept/review/reject
// verdict. It is a pure function of the result and thresholds: no I/O,
// no mutation of the input.
//
// Decision policy: reject when there is no text or confidence is below
// the review threshold; review when confidence sits between the review
// and accept thresholds or a balance mismatch is flagged; store
// otherwise. The remaining flags, low word count included, are
// informational warnings and never change the decision on their own.
func Validate(result *domain.ExtractionResult, th domain.Thresholds) *domain.ValidationVerdict {
	v := &domain.ValidationVerdict{}

	v.HasText = strings.TrimSpace(result.Text) != ""
	v.ConfidenceOK = result.Confidence >= th.Review

	if !v.ConfidenceOK {
		v.Flags.LowConfidence = true
		v.Warnings = append(v.Warnings,
			fmt.Sprintf("low OCR confidence: %.2f", result.Confidence))
	}
	if result.WordCount < th.MinWords {
		v.Flags.VeryLowWordCount = true
		v.Warnings = append(v.Warnings,
			fmt.Sprintf("very low word count: %d words", result.WordCount))
	}

	checkFields(result, th, v)

	switch {
	case !v.HasText || !v.ConfidenceOK:
		v.Recommendation = domain.RecommendReject
	case result.Confidence >= th.Accept && !v.Flags.BalanceMismatch:
		v.Recommendation = domain.RecommendStore
	default:
		v.Recommendation = domain.RecommendReview
	}

	logger.Info("Validation verdict: %s (confidence=%.2f, words=%d, warnings=%d)",
		v.Recommendation, result.Confidence, result.WordCount, len(v.Warnings))

	return v
}

// checkFields runs the structured-field anomaly checks. A parse failure
// on one field is recorded as a warning and never aborts the verdict.
func checkFields(result *domain.ExtractionResult, th domain.Thresholds, v *domain.ValidationVerdict) {
	f := &result.Fields
	if f.IsEmpty() {
		return
	}

	if f.GrandTotal == "" {
		v.Flags.NoGrandTotal = true
		v.Warnings = append(v.Warnings, "no grand total found in document")
	}
	if f.DDOCode == "" {
		v.Flags.NoDDOCode = true
		v.Warnings = append(v.Warnings, "no DDO code found in document")
	}
	if f.BalanceValidation != nil && !f.BalanceValidation.Valid {
		v.Flags.BalanceMismatch = true
		v.Warnings = append(v.Warnings, "balance mismatch detected in document")
	}

	if f.GrandTotal != "" && th.RoundNumberModulus > 0 {
		total, err := domain.ParseAmount(f.GrandTotal)
		if err != nil {
			v.Warnings = append(v.Warnings,
				fmt.Sprintf("grand total %q could not be parsed: %v", f.GrandTotal, err))
		} else if total > 0 && math.Mod(total, float64(th.RoundNumberModulus)) == 0 {
			v.Flags.SuspiciousRoundNumber = true
			v.Warnings = append(v.Warnings,
				fmt.Sprintf("suspicious round number detected: %s", f.GrandTotal))
		}
	}
}
