package integrate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truthlens/factwave/src/verify/types"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newFixed(cfg Config) *Integrator {
	cfg.Now = func() time.Time { return fixedNow }
	return New(cfg)
}

func TestIntegrateEmpty(t *testing.T) {
	result := newFixed(Config{}).Integrate(nil)

	assert.Equal(t, 0.5, result.TrustScore)
	assert.Equal(t, types.StatusUnverified, result.Status)
	assert.Equal(t, "no verification results found", result.Explanation)
	assert.Empty(t, result.Sources)
	assert.NotNil(t, result.Sources)
}

func TestIntegrateWeightedAverage(t *testing.T) {
	today := fixedNow
	results := []types.RawResult{
		{Source: types.SourceGoogle, TrustScore: 0.8, PublishDate: &today},
		{Source: types.SourceFactiverse, TrustScore: 0.4, PublishDate: &today},
	}

	result := newFixed(Config{}).Integrate(results)

	// (0.8*0.5 + 0.4*0.3) / (0.5 + 0.3) = 0.65
	assert.InDelta(t, 0.65, result.TrustScore, 1e-9)
	assert.Equal(t, types.StatusPartiallyTrue, result.Status)
}

func TestIntegrateMissingDateWeight(t *testing.T) {
	today := fixedNow
	results := []types.RawResult{
		{Source: types.SourceGoogle, TrustScore: 1.0, PublishDate: &today}, // weight 0.5
		{Source: types.SourceGoogle, TrustScore: 0.0},                      // weight 0.5*0.5
	}

	result := newFixed(Config{}).Integrate(results)

	// (1.0*0.5 + 0.0*0.25) / 0.75
	assert.InDelta(t, 2.0/3.0, result.TrustScore, 1e-9)
}

func TestIntegrateTimeDecay(t *testing.T) {
	integ := newFixed(Config{})

	recent := fixedNow.AddDate(0, 0, -15)
	assert.InDelta(t, 1.0-15.0/150, integ.timeWeight(&recent), 1e-6)

	old := fixedNow.AddDate(0, 0, -60)
	assert.InDelta(t, 0.8-60.0/300, integ.timeWeight(&old), 1e-6)

	// Unclamped by default: ancient dates go negative.
	ancient := fixedNow.AddDate(-2, 0, 0)
	assert.Less(t, integ.timeWeight(&ancient), 0.0)

	clamped := newFixed(Config{ClampTimeDecay: true})
	assert.Equal(t, 0.0, clamped.timeWeight(&ancient))
}

func TestIntegrateLongestExplanationWins(t *testing.T) {
	results := []types.RawResult{
		{Source: types.SourceGoogle, TrustScore: 0.9, Explanation: "short"},
		{Source: types.SourceFactiverse, TrustScore: 0.9, Explanation: "a considerably longer explanation"},
		{Source: types.SourceBigKinds, TrustScore: 0.9, Explanation: "mid length one"},
	}

	result := newFixed(Config{}).Integrate(results)
	assert.Equal(t, "a considerably longer explanation", result.Explanation)
}

func TestIntegrateExplanationTieKeepsFirst(t *testing.T) {
	results := []types.RawResult{
		{Source: types.SourceGoogle, TrustScore: 0.5, Explanation: "aaaa"},
		{Source: types.SourceFactiverse, TrustScore: 0.5, Explanation: "bbbb"},
	}

	result := newFixed(Config{}).Integrate(results)
	assert.Equal(t, "aaaa", result.Explanation)
}

func TestIntegrateSources(t *testing.T) {
	date := fixedNow.AddDate(0, 0, -1)
	results := []types.RawResult{
		{Source: types.SourceGoogle, Publisher: "Checker A", URL: "https://a.example/1", PublishDate: &date},
		{Source: types.SourceFactiverse, URL: "https://a.example/1"},
		{Source: types.SourceBigKinds, Publisher: "Paper B"}, // no URL, dropped
	}

	t.Run("duplicates kept by default", func(t *testing.T) {
		result := newFixed(Config{}).Integrate(results)
		require.Len(t, result.Sources, 2)
		assert.Equal(t, "Checker A", result.Sources[0].Name)
		// Publisher missing falls back to the provider name.
		assert.Equal(t, types.SourceFactiverse, result.Sources[1].Name)
	})

	t.Run("dedupe flag drops repeated URLs", func(t *testing.T) {
		result := newFixed(Config{DedupeSources: true}).Integrate(results)
		require.Len(t, result.Sources, 1)
		assert.Equal(t, "Checker A", result.Sources[0].Name)
	})
}

func TestIntegrateUnknownSourceWeight(t *testing.T) {
	assert.Equal(t, 0.2, sourceWeight("somebody-new"))
	assert.Equal(t, 0.5, sourceWeight(types.SourceGoogle))
}

func TestAddContext(t *testing.T) {
	result := &types.IntegratedResult{Status: types.StatusInconclusive}
	AddContext(result, "The government announced a new vaccine policy")

	require.NotNil(t, result.Context)
	assert.Equal(t, []string{"politics", "health"}, result.Context.Topics)
}

func TestAddContextNoOpWhenPresent(t *testing.T) {
	existing := &types.ContextInfo{Topics: []string{"economy"}}
	result := &types.IntegratedResult{Context: existing}

	AddContext(result, "vaccine vaccine vaccine")
	assert.Same(t, existing, result.Context)
}

func TestAddContextNoTags(t *testing.T) {
	result := &types.IntegratedResult{}
	AddContext(result, "nothing that matches a bucket")
	assert.Nil(t, result.Context)
}
