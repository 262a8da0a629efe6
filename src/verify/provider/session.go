package provider

import (
	"context"
	"sync"
	"time"
)

// expirySlack renews a token slightly before the provider's stated expiry.
const expirySlack = 30 * time.Second

// RefreshFunc exchanges credentials for a token and its expiry.
type RefreshFunc func(ctx context.Context) (token string, expiry time.Time, err error)

// AuthSession holds a provider bearer token. The refresh lock ensures
// concurrent queries on the same adapter do not trigger redundant
// re-authentication storms.
type AuthSession struct {
	mu     sync.Mutex
	token  string
	expiry time.Time
}

// Token returns the cached token, refreshing it first when missing or
// expired.
func (s *AuthSession) Token(ctx context.Context, refresh RefreshFunc) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expiry.Add(-expirySlack)) {
		return s.token, nil
	}

	token, expiry, err := refresh(ctx)
	if err != nil {
		return "", err
	}
	s.token = token
	s.expiry = expiry
	return token, nil
}

// Invalidate drops the cached token so the next call re-authenticates. Used
// when the provider rejects the token with a 401.
func (s *AuthSession) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.expiry = time.Time{}
	s.mu.Unlock()
}
