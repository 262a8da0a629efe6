package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/truthlens/factwave/src/verify/types"
)

// DefaultTTL is how long a verification outcome stays cached.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "factcheck:"

// Key derives the cache slot for a claim. Exact concatenation, case-sensitive,
// no normalization: claims differing only by whitespace or case are distinct
// slots. Matches the historical key scheme.
func Key(languageCode, claimText string) string {
	return keyPrefix + languageCode + ":" + claimText
}

// Store memoizes verification outcomes with a TTL. Implementations must be
// fire-and-forget safe: failures are logged, never propagated, so a cache
// outage degrades to uncached verification.
type Store interface {
	Get(ctx context.Context, key string) (*types.VerificationRecord, bool)
	Set(ctx context.Context, key string, record *types.VerificationRecord, ttl time.Duration)
}

// Error wraps a cache backend failure. Always non-fatal; used for logging.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cache: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
