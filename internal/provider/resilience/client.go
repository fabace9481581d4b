// Package resilience wraps outbound HTTP calls to upstream providers
// (geocoding, weather) with retry and circuit-breaker protection.
package resilience

import (
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// Client errors.
var (
	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// ClientConfig holds configuration for a resilient HTTP client. Zero
// values select the defaults noted per field.
type ClientConfig struct {
	// Name identifies the upstream in breaker state and health reports.
	Name string

	// Timeout bounds each individual HTTP attempt. Default 10s.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after the first try.
	// Default 3.
	MaxRetries uint64

	// InitialInterval and MaxInterval bound the exponential backoff
	// between attempts. Defaults 100ms and 5s.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// BreakerTimeout is how long the breaker stays open before probing
	// half-open. Default 60s.
	BreakerTimeout time.Duration

	// OnStateChange, when set, observes breaker transitions.
	OnStateChange func(name string, from, to gobreaker.State)

	// Recorder, when set, observes the outcome of every attempt.
	Recorder Recorder
}

// Recorder receives per-attempt outcomes keyed by upstream name.
// *Registry satisfies it.
type Recorder interface {
	RecordSuccess(name string)
	RecordFailure(name string, err error)
}

// Client executes HTTP requests against one upstream. Transient failures
// (network errors, 5xx) are retried with exponential backoff; sustained
// failure trips the breaker and calls fail fast with ErrCircuitOpen.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	cfg        ClientConfig
}

// NewClient creates a resilient HTTP client for one upstream.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 60 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		// Trip at a 50% failure rate once there is enough signal.
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && ratio >= 0.5
		},
	}
	if cfg.OnStateChange != nil {
		settings.OnStateChange = cfg.OnStateChange
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    gobreaker.NewCircuitBreaker[*http.Response](settings),
		cfg:        cfg,
	}
}

// Do executes the request with retries and breaker protection. 5xx
// responses count as breaker failures; if retries are exhausted on a 5xx
// the final response is still returned so callers can inspect it. The
// caller owns the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialInterval
	bo.MaxInterval = c.cfg.MaxInterval
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.MaxRetries), ctx)

	var lastResp *http.Response
	operation := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, err := c.httpClient.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= 500 {
				return r, &UpstreamError{StatusCode: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				c.record(ErrCircuitOpen)
				return backoff.Permanent(ErrCircuitOpen)
			}
			c.record(err)
			if resp != nil {
				lastResp = resp
			}
			return err
		}
		c.record(nil)
		lastResp = resp
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}
	return lastResp, nil
}

func (c *Client) record(err error) {
	if c.cfg.Recorder == nil {
		return
	}
	if err != nil {
		c.cfg.Recorder.RecordFailure(c.cfg.Name, err)
		return
	}
	c.cfg.Recorder.RecordSuccess(c.cfg.Name)
}

// UpstreamError is an HTTP 5xx from the upstream.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return "upstream error: " + http.StatusText(e.StatusCode)
}

// BreakerState returns the breaker's current state.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// BreakerCounts returns the breaker's rolling counts.
func (c *Client) BreakerCounts() gobreaker.Counts {
	return c.breaker.Counts()
}
