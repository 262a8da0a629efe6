package resilience

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/truthlens/factwave/src/verify/types"
)

func TestFallbackCycle(t *testing.T) {
	assert.Equal(t, types.SourceFactiverse, Fallback(types.SourceGoogle))
	assert.Equal(t, types.SourceBigKinds, Fallback(types.SourceFactiverse))
	assert.Equal(t, types.SourceGoogle, Fallback(types.SourceBigKinds))
}

func TestFallbackUnknownProvider(t *testing.T) {
	assert.Equal(t, types.SourceGoogle, Fallback("somebody-new"))
}
