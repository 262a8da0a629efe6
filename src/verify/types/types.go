package types

import "time"

// Provider identifiers. Adapters register under these names and the
// integrator resolves source weights by them.
const (
	SourceGoogle     = "google"
	SourceFactiverse = "factiverse"
	SourceBigKinds   = "bigkinds"
)

// Status is the categorical verdict for a claim.
type Status string

const (
	StatusVerifiedTrue   Status = "VERIFIED_TRUE"
	StatusVerifiedFalse  Status = "VERIFIED_FALSE"
	StatusPartiallyTrue  Status = "PARTIALLY_TRUE"
	StatusPartiallyFalse Status = "PARTIALLY_FALSE"
	StatusMixed          Status = "MIXED"
	StatusInconclusive   Status = "INCONCLUSIVE"
	StatusUnverified     Status = "UNVERIFIED"
	StatusError          Status = "ERROR"
)

// StatusFromScore maps a normalized trust score onto a Status. The same
// thresholds apply to numeric-score providers and to the integrated verdict.
func StatusFromScore(score float64) Status {
	switch {
	case score >= 0.8:
		return StatusVerifiedTrue
	case score <= 0.2:
		return StatusVerifiedFalse
	case score > 0.5:
		return StatusPartiallyTrue
	case score < 0.5:
		return StatusPartiallyFalse
	default:
		return StatusInconclusive
	}
}

// Claim is the natural-language statement being verified. Immutable input.
type Claim struct {
	Text string `json:"text"`
}

// VerificationOptions controls a single verification call. Zero values are
// filled in by Normalize.
type VerificationOptions struct {
	LanguageCode string   `json:"languageCode"`
	MaxAgeDays   int      `json:"maxAgeDays"`
	MaxResults   int      `json:"maxResults"`
	APIs         []string `json:"apis,omitempty"`
}

const (
	DefaultLanguageCode = "ko"
	DefaultMaxAgeDays   = 30
	DefaultMaxResults   = 10
)

// Normalize fills unset fields with defaults. An empty APIs list means
// "all registered providers" and is left empty here.
func (o VerificationOptions) Normalize() VerificationOptions {
	if o.LanguageCode == "" {
		o.LanguageCode = DefaultLanguageCode
	}
	if o.MaxAgeDays <= 0 {
		o.MaxAgeDays = DefaultMaxAgeDays
	}
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	return o
}

// RawResult is one provider match for one claim. Adapters either populate
// every field they have data for or drop the item entirely.
type RawResult struct {
	Source      string     `json:"source"`
	ClaimText   string     `json:"claimText"`
	Similarity  float64    `json:"similarity"`
	TrustScore  float64    `json:"trustScore"`
	Status      Status     `json:"status"`
	Explanation string     `json:"explanation"`
	Publisher   string     `json:"publisher"`
	PublishDate *time.Time `json:"publishDate,omitempty"`
	URL         string     `json:"url,omitempty"`
}

// SourceRef is a citation carried on an integrated result.
type SourceRef struct {
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	PublishDate *time.Time `json:"publishDate,omitempty"`
}

// ContextInfo is optional enrichment attached to an integrated result.
type ContextInfo struct {
	Topics []string `json:"topics"`
}

// IntegratedResult is the combined verdict across all providers.
type IntegratedResult struct {
	TrustScore  float64      `json:"trustScore"`
	Status      Status       `json:"status"`
	Explanation string       `json:"explanation"`
	Sources     []SourceRef  `json:"sources"`
	Context     *ContextInfo `json:"context,omitempty"`
}

// VerificationRecord is the full outcome of one verification call and the
// value stored in the cache. Read-only once created.
type VerificationRecord struct {
	Claim            string           `json:"claim"`
	Verification     IntegratedResult `json:"verification"`
	RawResults       []RawResult      `json:"rawResults"`
	ProcessingTimeMs int64            `json:"processingTime"`
	Timestamp        time.Time        `json:"timestamp"`
	FromCache        bool             `json:"fromCache"`
}
