package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/truthlens/factwave/src/verify/cache"
	"github.com/truthlens/factwave/src/verify/integrate"
	"github.com/truthlens/factwave/src/verify/provider"
	"github.com/truthlens/factwave/src/verify/resilience"
	"github.com/truthlens/factwave/src/verify/types"
)

// DefaultBatchConcurrency bounds simultaneous claim verifications in a batch.
// Each claim additionally fans out across its adapters.
const DefaultBatchConcurrency = 4

// Config tunes one Orchestrator. Zero values take defaults.
type Config struct {
	MaxRetries       int
	RetryBaseDelay   time.Duration
	CacheTTL         time.Duration
	BatchConcurrency int
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// IntegrationError reports that every adapter and fallback came back empty
// or failed. Logged only; verification still yields the UNVERIFIED verdict.
type IntegrationError struct {
	Claim string
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("orchestrator: no usable results for claim %q", e.Claim)
}

// Orchestrator is the verification façade. Exactly one instance should be
// constructed and shared by every entry point so cache and provider sessions
// are shared too.
type Orchestrator struct {
	adapters   map[string]provider.Adapter
	order      []string
	store      cache.Store
	integrator *integrate.Integrator
	cfg        Config
	now        func() time.Time
}

func New(adapters []provider.Adapter, store cache.Store, integrator *integrate.Integrator, cfg Config) *Orchestrator {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = resilience.DefaultMaxRetries
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = resilience.DefaultBaseDelay
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cache.DefaultTTL
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = DefaultBatchConcurrency
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	byID := make(map[string]provider.Adapter, len(adapters))
	order := make([]string, 0, len(adapters))
	for _, a := range adapters {
		byID[a.ID()] = a
		order = append(order, a.ID())
	}

	return &Orchestrator{
		adapters:   byID,
		order:      order,
		store:      store,
		integrator: integrator,
		cfg:        cfg,
		now:        now,
	}
}

// VerifyClaim runs the full pipeline for one claim: cache lookup, concurrent
// provider fan-out with retry and one-hop fallback, integration, context
// enrichment, cache store. It never returns an error: unexpected failures
// become an ERROR-status record.
func (o *Orchestrator) VerifyClaim(ctx context.Context, claim types.Claim, opts types.VerificationOptions) (record types.VerificationRecord) {
	start := o.now()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("orchestrator: panic verifying claim: %v", r)
			record = o.errorRecord(claim, fmt.Sprintf("%v", r), start)
		}
	}()

	opts = opts.Normalize()
	key := cache.Key(opts.LanguageCode, claim.Text)
	if cached, ok := o.store.Get(ctx, key); ok {
		cached.FromCache = true
		return *cached
	}

	selected := o.selectAdapters(opts.APIs)
	raw := o.fanOut(ctx, selected, claim, opts)
	if len(raw) == 0 {
		log.Printf("%v", &IntegrationError{Claim: claim.Text})
	}

	verification := o.integrator.Integrate(raw)
	integrate.AddContext(&verification, claim.Text)

	record = types.VerificationRecord{
		Claim:            claim.Text,
		Verification:     verification,
		RawResults:       raw,
		ProcessingTimeMs: o.now().Sub(start).Milliseconds(),
		Timestamp:        o.now(),
	}
	o.store.Set(ctx, key, &record, o.cfg.CacheTTL)
	return record
}

// VerifyClaimBatch verifies claims concurrently under the batch bound.
// Output order matches input order and each claim's failure is isolated.
func (o *Orchestrator) VerifyClaimBatch(ctx context.Context, claims []types.Claim, opts types.VerificationOptions) []types.VerificationRecord {
	results := make([]types.VerificationRecord, len(claims))
	if len(claims) == 0 {
		return results
	}

	sem := make(chan struct{}, o.cfg.BatchConcurrency)
	var wg sync.WaitGroup
	for i, c := range claims {
		wg.Add(1)
		go func(idx int, cl types.Claim) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = o.errorRecord(cl, "verification cancelled", o.now())
				return
			}
			results[idx] = o.VerifyClaim(ctx, cl, opts)
		}(i, c)
	}
	wg.Wait()
	return results
}

// selectAdapters resolves the adapter set for a call. An empty request means
// all registered adapters, in registration order.
func (o *Orchestrator) selectAdapters(apis []string) []provider.Adapter {
	if len(apis) == 0 {
		out := make([]provider.Adapter, 0, len(o.order))
		for _, id := range o.order {
			out = append(out, o.adapters[id])
		}
		return out
	}

	requested := make(map[string]bool, len(apis))
	for _, id := range apis {
		requested[strings.ToLower(id)] = true
	}
	var out []provider.Adapter
	for _, id := range o.order {
		if requested[id] {
			out = append(out, o.adapters[id])
			delete(requested, id)
		}
	}
	for id := range requested {
		log.Printf("orchestrator: unknown provider %q requested, skipping", id)
	}
	return out
}

func (o *Orchestrator) fanOut(ctx context.Context, selected []provider.Adapter, claim types.Claim, opts types.VerificationOptions) []types.RawResult {
	buckets := make([][]types.RawResult, len(selected))
	var wg sync.WaitGroup
	for i, adapter := range selected {
		wg.Add(1)
		go func(idx int, a provider.Adapter) {
			defer wg.Done()
			// A panicking adapter degrades to zero results for that source.
			defer func() {
				if r := recover(); r != nil {
					log.Printf("orchestrator: provider %s panicked: %v", a.ID(), r)
				}
			}()
			buckets[idx] = o.queryWithResilience(ctx, a, claim, opts)
		}(i, adapter)
	}
	wg.Wait()

	flat := []types.RawResult{}
	for _, bucket := range buckets {
		flat = append(flat, bucket...)
	}
	return flat
}

// queryWithResilience wraps one adapter in the retry loop; when retries are
// exhausted the cyclic fallback adapter gets a single best-effort attempt,
// accepted as-is. No further fallback hops.
func (o *Orchestrator) queryWithResilience(ctx context.Context, a provider.Adapter, claim types.Claim, opts types.VerificationOptions) []types.RawResult {
	results, err := resilience.WithRetryDelay(ctx, o.cfg.MaxRetries, o.cfg.RetryBaseDelay, func(ctx context.Context) ([]types.RawResult, error) {
		return a.Query(ctx, claim, opts)
	})
	if err == nil {
		return results
	}
	log.Printf("orchestrator: provider %s exhausted retries: %v", a.ID(), err)

	fallbackID := resilience.Fallback(a.ID())
	fallback, ok := o.adapters[fallbackID]
	if !ok || fallbackID == a.ID() {
		return nil
	}
	substitute, err := fallback.Query(ctx, claim, opts)
	if err != nil {
		log.Printf("orchestrator: fallback %s failed: %v", fallbackID, err)
		return nil
	}
	return substitute
}

func (o *Orchestrator) errorRecord(claim types.Claim, msg string, start time.Time) types.VerificationRecord {
	return types.VerificationRecord{
		Claim: claim.Text,
		Verification: types.IntegratedResult{
			TrustScore:  0.5,
			Status:      types.StatusError,
			Explanation: msg,
			Sources:     []types.SourceRef{},
		},
		RawResults:       []types.RawResult{},
		ProcessingTimeMs: o.now().Sub(start).Milliseconds(),
		Timestamp:        o.now(),
	}
}
