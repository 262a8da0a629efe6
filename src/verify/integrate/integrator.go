package integrate

import (
	"time"

	"github.com/truthlens/factwave/src/verify/types"
)

// Per-source base weights. Unregistered sources weigh like bigkinds.
var sourceWeights = map[string]float64{
	types.SourceGoogle:     0.5,
	types.SourceFactiverse: 0.3,
	types.SourceBigKinds:   0.2,
}

const unknownSourceWeight = 0.2

// missingDateWeight applies when a result carries no publish date.
const missingDateWeight = 0.5

// Config controls integration behavior.
type Config struct {
	// DedupeSources drops repeated citation URLs. Off by default: duplicate
	// citations match the historical output.
	DedupeSources bool
	// ClampTimeDecay bounds the time weight to [0,1]. Off by default: very
	// old publish dates historically produced negative weights.
	ClampTimeDecay bool
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Integrator combines per-provider raw results into one verdict using
// source-weighted, time-decayed averaging.
type Integrator struct {
	cfg Config
	now func() time.Time
}

func New(cfg Config) *Integrator {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Integrator{cfg: cfg, now: now}
}

// Integrate combines the flattened result list. Empty input yields the
// neutral UNVERIFIED verdict.
func (i *Integrator) Integrate(results []types.RawResult) types.IntegratedResult {
	if len(results) == 0 {
		return types.IntegratedResult{
			TrustScore:  0.5,
			Status:      types.StatusUnverified,
			Explanation: "no verification results found",
			Sources:     []types.SourceRef{},
		}
	}

	var weightedSum, weightTotal, plainSum float64
	for _, r := range results {
		weight := sourceWeight(r.Source) * i.timeWeight(r.PublishDate)
		weightedSum += r.TrustScore * weight
		weightTotal += weight
		plainSum += r.TrustScore
	}

	var finalScore float64
	if weightTotal == 0 {
		finalScore = plainSum / float64(len(results))
	} else {
		finalScore = weightedSum / weightTotal
	}

	return types.IntegratedResult{
		TrustScore:  finalScore,
		Status:      types.StatusFromScore(finalScore),
		Explanation: longestExplanation(results),
		Sources:     i.collectSources(results),
	}
}

func sourceWeight(source string) float64 {
	if w, ok := sourceWeights[source]; ok {
		return w
	}
	return unknownSourceWeight
}

// timeWeight decays a result's influence by the age of its publish date.
func (i *Integrator) timeWeight(publishDate *time.Time) float64 {
	if publishDate == nil {
		return missingDateWeight
	}
	daysDiff := i.now().Sub(*publishDate).Hours() / 24

	var w float64
	if daysDiff <= 30 {
		w = 1.0 - daysDiff/150
	} else {
		w = 0.8 - daysDiff/300
	}
	if i.cfg.ClampTimeDecay {
		if w < 0 {
			w = 0
		}
		if w > 1 {
			w = 1
		}
	}
	return w
}

// longestExplanation picks the longest explanation; ties keep the earlier
// result, so input order must be stable.
func longestExplanation(results []types.RawResult) string {
	best := ""
	for _, r := range results {
		if len(r.Explanation) > len(best) {
			best = r.Explanation
		}
	}
	return best
}

func (i *Integrator) collectSources(results []types.RawResult) []types.SourceRef {
	sources := []types.SourceRef{}
	seen := map[string]bool{}
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		if i.cfg.DedupeSources {
			if seen[r.URL] {
				continue
			}
			seen[r.URL] = true
		}
		name := r.Publisher
		if name == "" {
			name = r.Source
		}
		sources = append(sources, types.SourceRef{
			Name:        name,
			URL:         r.URL,
			PublishDate: r.PublishDate,
		})
	}
	return sources
}
