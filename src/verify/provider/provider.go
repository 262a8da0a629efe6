package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/truthlens/factwave/src/verify/types"
	"github.com/truthlens/factwave/src/webclient"
)

// MinSimilarity is the floor below which a provider match is discarded
// before it leaves the adapter.
const MinSimilarity = 0.5

// Adapter wraps one external verification source behind a uniform query
// interface. Implementations own provider-specific auth, request shaping and
// rating mapping.
type Adapter interface {
	// ID returns the provider identifier the adapter registered under.
	ID() string
	// Authenticate establishes or refreshes the provider session. No-op for
	// key-based providers.
	Authenticate(ctx context.Context) error
	// Query runs the provider search for the claim. Provider-side parse
	// problems are logged and swallowed; only transport-level errors are
	// returned, typed for the retry loop. A result list may be empty.
	Query(ctx context.Context, claim types.Claim, opts types.VerificationOptions) ([]types.RawResult, error)
}

// FactoryConfig captures the inputs required to construct an adapter.
type FactoryConfig struct {
	APIKey  string
	BaseURL string

	Web *webclient.Client

	Extra map[string]string
}

// Factory builds an adapter from its config.
type Factory func(FactoryConfig) (Adapter, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers an adapter factory under one or more names. Called from
// provider package init functions.
func Register(name string, factory Factory, aliases ...string) {
	mu.Lock()
	defer mu.Unlock()

	all := append([]string{name}, aliases...)
	for _, n := range all {
		factories[strings.ToLower(n)] = factory
	}
}

// New constructs the named adapter.
func New(name string, cfg FactoryConfig) (Adapter, error) {
	mu.RLock()
	factory := factories[strings.ToLower(name)]
	mu.RUnlock()

	if factory == nil {
		return nil, fmt.Errorf("provider: %q not registered", name)
	}
	if cfg.Web == nil {
		cfg.Web = webclient.New(30*time.Second, 0)
	}
	return factory(cfg)
}

// Registered returns the registered provider names, sorted.
func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
