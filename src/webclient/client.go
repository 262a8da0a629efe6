package webclient

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// NewDefault returns an HTTP client with sane timeouts.
func NewDefault(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Client wraps an HTTP client with a per-host outbound rate limiter so a
// burst of verifications cannot hammer a single provider.
type Client struct {
	http *http.Client

	mu     sync.Mutex
	qps    rate.Limit
	burst  int
	limits map[string]*rate.Limiter
}

// New builds a rate-limited client. qps <= 0 disables limiting.
func New(timeout time.Duration, qps float64) *Client {
	return &Client{
		http:   NewDefault(timeout),
		qps:    rate.Limit(qps),
		burst:  1,
		limits: make(map[string]*rate.Limiter),
	}
}

func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	lim, ok := c.limits[host]
	if !ok {
		lim = rate.NewLimiter(c.qps, c.burst)
		c.limits[host] = lim
	}
	return lim
}

// Do waits for the host's rate limiter, then performs the request. The
// request context bounds both the wait and the call.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.qps > 0 {
		if err := c.limiter(req.URL.Host).Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return c.http.Do(req)
}
