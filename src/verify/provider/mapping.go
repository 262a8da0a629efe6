package provider

import (
	"strings"

	"github.com/truthlens/factwave/src/verify/types"
)

// Keyword classes for textual ratings. Korean tokens cover the domestic
// fact-check publishers.
var (
	trueTokens    = []string{"true", "correct", "accurate", "사실", "팩트"}
	falseTokens   = []string{"false", "incorrect", "fake", "거짓", "오류"}
	partialTokens = []string{"partly", "half", "partially", "일부", "부분"}
)

// MapRating converts a provider's textual rating into a trust score and
// status. Matching is case-insensitive substring search. The partial class is
// checked first so "Partly False" lands on PARTIALLY_FALSE rather than
// VERIFIED_FALSE.
func MapRating(rating string) (float64, types.Status) {
	lower := strings.ToLower(rating)

	if containsAny(lower, partialTokens) {
		switch {
		case containsAny(lower, trueTokens):
			return 0.6, types.StatusPartiallyTrue
		case containsAny(lower, falseTokens):
			return 0.4, types.StatusPartiallyFalse
		default:
			return 0.5, types.StatusMixed
		}
	}
	if containsAny(lower, trueTokens) {
		return 0.9, types.StatusVerifiedTrue
	}
	if containsAny(lower, falseTokens) {
		return 0.1, types.StatusVerifiedFalse
	}
	return 0.5, types.StatusInconclusive
}

// MapNumericScore converts a 0-100 provider score into a trust score and the
// threshold-derived status.
func MapNumericScore(score float64) (float64, types.Status) {
	trust := score / 100
	if trust < 0 {
		trust = 0
	}
	if trust > 1 {
		trust = 1
	}
	return trust, types.StatusFromScore(trust)
}

func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}
