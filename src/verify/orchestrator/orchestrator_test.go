package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truthlens/factwave/src/verify/cache"
	"github.com/truthlens/factwave/src/verify/integrate"
	"github.com/truthlens/factwave/src/verify/provider"
	"github.com/truthlens/factwave/src/verify/types"
	"github.com/truthlens/factwave/src/webclient"
)

// fakeAdapter scripts per-claim behavior: fail the first failures[claim]
// calls, then return results[claim].
type fakeAdapter struct {
	id string

	mu       sync.Mutex
	calls    map[string]int
	failures map[string]int
	results  map[string][]types.RawResult
	panics   bool
}

func newFakeAdapter(id string) *fakeAdapter {
	return &fakeAdapter{
		id:       id,
		calls:    map[string]int{},
		failures: map[string]int{},
		results:  map[string][]types.RawResult{},
	}
}

func (f *fakeAdapter) ID() string                             { return f.id }
func (f *fakeAdapter) Authenticate(ctx context.Context) error { return nil }

func (f *fakeAdapter) Query(ctx context.Context, claim types.Claim, opts types.VerificationOptions) ([]types.RawResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.panics {
		panic("scripted panic")
	}
	f.calls[claim.Text]++
	if f.calls[claim.Text] <= f.failures[claim.Text] {
		return nil, &webclient.TransientError{Provider: f.id, Err: errors.New("scripted failure")}
	}
	return f.results[claim.Text], nil
}

func (f *fakeAdapter) callCount(claim string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[claim]
}

func result(source string, score float64) types.RawResult {
	return types.RawResult{
		Source:      source,
		TrustScore:  score,
		Status:      types.StatusFromScore(score),
		Similarity:  1,
		Explanation: "scripted",
		URL:         "https://example.com/" + source,
	}
}

func newTestOrchestrator(store cache.Store, adapters ...provider.Adapter) *Orchestrator {
	return New(adapters, store, integrate.New(integrate.Config{}), Config{
		MaxRetries:     3,
		RetryBaseDelay: time.Millisecond,
	})
}

func TestVerifyClaimAggregatesAllProviders(t *testing.T) {
	google := newFakeAdapter(types.SourceGoogle)
	factiverse := newFakeAdapter(types.SourceFactiverse)
	google.results["X"] = []types.RawResult{result(types.SourceGoogle, 0.9)}
	factiverse.results["X"] = []types.RawResult{result(types.SourceFactiverse, 0.7)}

	orch := newTestOrchestrator(cache.NewMemory(), google, factiverse)
	record := orch.VerifyClaim(context.Background(), types.Claim{Text: "X"}, types.VerificationOptions{})

	assert.Equal(t, "X", record.Claim)
	assert.Len(t, record.RawResults, 2)
	assert.False(t, record.FromCache)
	assert.NotEqual(t, types.StatusError, record.Verification.Status)
}

func TestVerifyClaimCacheIdempotence(t *testing.T) {
	google := newFakeAdapter(types.SourceGoogle)
	google.results["X"] = []types.RawResult{result(types.SourceGoogle, 0.9)}

	orch := newTestOrchestrator(cache.NewMemory(), google)
	opts := types.VerificationOptions{}

	first := orch.VerifyClaim(context.Background(), types.Claim{Text: "X"}, opts)
	second := orch.VerifyClaim(context.Background(), types.Claim{Text: "X"}, opts)

	// One set of provider calls total.
	assert.Equal(t, 1, google.callCount("X"))
	assert.False(t, first.FromCache)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Verification, second.Verification)
}

func TestVerifyClaimRetriesWithoutFallback(t *testing.T) {
	google := newFakeAdapter(types.SourceGoogle)
	factiverse := newFakeAdapter(types.SourceFactiverse)
	google.failures["X"] = 2
	google.results["X"] = []types.RawResult{result(types.SourceGoogle, 0.9)}

	orch := newTestOrchestrator(cache.NewMemory(), google, factiverse)
	record := orch.VerifyClaim(context.Background(), types.Claim{Text: "X"}, types.VerificationOptions{
		APIs: []string{types.SourceGoogle},
	})

	// Two failures then success on the third attempt; fallback untouched.
	assert.Equal(t, 3, google.callCount("X"))
	assert.Equal(t, 0, factiverse.callCount("X"))
	require.Len(t, record.RawResults, 1)
	assert.Equal(t, types.SourceGoogle, record.RawResults[0].Source)
}

func TestVerifyClaimFallbackAfterExhaustion(t *testing.T) {
	google := newFakeAdapter(types.SourceGoogle)
	factiverse := newFakeAdapter(types.SourceFactiverse)
	google.failures["X"] = 10
	factiverse.results["X"] = []types.RawResult{result(types.SourceFactiverse, 0.7)}

	orch := newTestOrchestrator(cache.NewMemory(), google, factiverse)
	record := orch.VerifyClaim(context.Background(), types.Claim{Text: "X"}, types.VerificationOptions{
		APIs: []string{types.SourceGoogle},
	})

	// Initial attempt + 3 retries, then exactly one fallback hop.
	assert.Equal(t, 4, google.callCount("X"))
	assert.Equal(t, 1, factiverse.callCount("X"))
	require.Len(t, record.RawResults, 1)
	assert.Equal(t, types.SourceFactiverse, record.RawResults[0].Source)
}

func TestVerifyClaimAllEmptyYieldsUnverified(t *testing.T) {
	google := newFakeAdapter(types.SourceGoogle)

	orch := newTestOrchestrator(cache.NewMemory(), google)
	record := orch.VerifyClaim(context.Background(), types.Claim{Text: "X"}, types.VerificationOptions{})

	assert.Equal(t, types.StatusUnverified, record.Verification.Status)
	assert.Equal(t, 0.5, record.Verification.TrustScore)
	assert.Empty(t, record.RawResults)
	assert.NotNil(t, record.RawResults)
}

func TestVerifyClaimPanickingAdapterDegrades(t *testing.T) {
	google := newFakeAdapter(types.SourceGoogle)
	google.panics = true

	orch := newTestOrchestrator(cache.NewMemory(), google)
	record := orch.VerifyClaim(context.Background(), types.Claim{Text: "X"}, types.VerificationOptions{})

	assert.Equal(t, types.StatusUnverified, record.Verification.Status)
}

type panickingStore struct{}

func (panickingStore) Get(context.Context, string) (*types.VerificationRecord, bool) {
	panic("store down")
}
func (panickingStore) Set(context.Context, string, *types.VerificationRecord, time.Duration) {}

func TestVerifyClaimInternalPanicBecomesErrorRecord(t *testing.T) {
	google := newFakeAdapter(types.SourceGoogle)

	orch := newTestOrchestrator(panickingStore{}, google)
	record := orch.VerifyClaim(context.Background(), types.Claim{Text: "X"}, types.VerificationOptions{})

	assert.Equal(t, types.StatusError, record.Verification.Status)
	assert.Equal(t, 0.5, record.Verification.TrustScore)
	assert.Equal(t, "store down", record.Verification.Explanation)
}

func TestVerifyClaimUnknownAPIFilter(t *testing.T) {
	google := newFakeAdapter(types.SourceGoogle)
	google.results["X"] = []types.RawResult{result(types.SourceGoogle, 0.9)}

	orch := newTestOrchestrator(cache.NewMemory(), google)
	record := orch.VerifyClaim(context.Background(), types.Claim{Text: "X"}, types.VerificationOptions{
		APIs: []string{"nonsense"},
	})

	// No adapter matched: neutral verdict, no provider calls.
	assert.Equal(t, 0, google.callCount("X"))
	assert.Equal(t, types.StatusUnverified, record.Verification.Status)
}

func TestVerifyClaimBatchIsolationAndOrder(t *testing.T) {
	google := newFakeAdapter(types.SourceGoogle)
	google.results["A"] = []types.RawResult{result(types.SourceGoogle, 0.9)}
	google.failures["B"] = 100

	orch := newTestOrchestrator(cache.NewMemory(), google)
	records := orch.VerifyClaimBatch(context.Background(), []types.Claim{{Text: "A"}, {Text: "B"}}, types.VerificationOptions{})

	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].Claim)
	assert.Equal(t, "B", records[1].Claim)
	assert.Equal(t, types.StatusVerifiedTrue, records[0].Verification.Status)
	assert.Equal(t, types.StatusUnverified, records[1].Verification.Status)
}

func TestVerifyClaimBatchEmpty(t *testing.T) {
	orch := newTestOrchestrator(cache.NewMemory(), newFakeAdapter(types.SourceGoogle))
	records := orch.VerifyClaimBatch(context.Background(), nil, types.VerificationOptions{})
	assert.Empty(t, records)
	assert.NotNil(t, records)
}

func TestVerifyClaimBatchRespectsConcurrencyBound(t *testing.T) {
	var mu sync.Mutex
	active, peak := 0, 0

	slow := &countingAdapter{
		id: types.SourceGoogle,
		onQuery: func() {
			mu.Lock()
			active++
			if active > peak {
				peak = active
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		},
	}

	orch := New([]provider.Adapter{slow}, cache.NewMemory(), integrate.New(integrate.Config{}), Config{
		MaxRetries:       1,
		RetryBaseDelay:   time.Millisecond,
		BatchConcurrency: 2,
	})

	claims := make([]types.Claim, 8)
	for i := range claims {
		claims[i] = types.Claim{Text: string(rune('a' + i))}
	}
	orch.VerifyClaimBatch(context.Background(), claims, types.VerificationOptions{})

	assert.LessOrEqual(t, peak, 2)
}

type countingAdapter struct {
	id      string
	onQuery func()
}

func (c *countingAdapter) ID() string                             { return c.id }
func (c *countingAdapter) Authenticate(ctx context.Context) error { return nil }

func (c *countingAdapter) Query(ctx context.Context, claim types.Claim, opts types.VerificationOptions) ([]types.RawResult, error) {
	if c.onQuery != nil {
		c.onQuery()
	}
	return nil, nil
}
