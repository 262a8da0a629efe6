package resilience

import "github.com/truthlens/factwave/src/verify/types"

// fallbackChain is the fixed cyclic substitution order for failed providers.
var fallbackChain = []string{types.SourceGoogle, types.SourceFactiverse, types.SourceBigKinds}

// Fallback returns the provider that substitutes for a failed one: the next
// entry in the cycle google -> factiverse -> bigkinds -> google. Unknown
// providers fall back to the head of the chain.
func Fallback(failedID string) string {
	for i, id := range fallbackChain {
		if id == failedID {
			return fallbackChain[(i+1)%len(fallbackChain)]
		}
	}
	return fallbackChain[0]
}
