package resilience

import (
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// UpstreamHealth is one upstream's health as reported by the readiness
// and status endpoints.
type UpstreamHealth struct {
	Name          string           `json:"name"`
	CircuitState  gobreaker.State  `json:"-"`
	State         string           `json:"state"`
	Counts        gobreaker.Counts `json:"counts"`
	LastSuccessAt *time.Time       `json:"last_success_at,omitempty"`
	LastFailureAt *time.Time       `json:"last_failure_at,omitempty"`
	LastError     string           `json:"last_error,omitempty"`
}

// Healthy reports whether the breaker is closed.
func (h *UpstreamHealth) Healthy() bool {
	return h.CircuitState == gobreaker.StateClosed
}

// Registry tracks the upstream clients in use and their last observed
// outcomes. One instance per process, owned by main and shared with the
// ops handlers.
type Registry struct {
	mu        sync.RWMutex
	upstreams map[string]*upstream
}

type upstream struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{upstreams: make(map[string]*upstream)}
}

// Register adds an upstream client under its name.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upstreams[name] = &upstream{client: client}
}

// RecordSuccess notes a successful call to the named upstream.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.upstreams[name]; ok {
		now := time.Now()
		u.lastSuccessAt = &now
	}
}

// RecordFailure notes a failed call to the named upstream.
func (r *Registry) RecordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.upstreams[name]; ok {
		now := time.Now()
		u.lastFailureAt = &now
		if err != nil {
			u.lastError = err.Error()
		}
	}
}

// Health returns the named upstream's health, or nil if unregistered.
func (r *Registry) Health(name string) *UpstreamHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.upstreams[name]
	if !ok {
		return nil
	}
	return u.health(name)
}

// AllHealth returns health for every registered upstream.
func (r *Registry) AllHealth() []*UpstreamHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*UpstreamHealth, 0, len(r.upstreams))
	for name, u := range r.upstreams {
		out = append(out, u.health(name))
	}
	return out
}

func (u *upstream) health(name string) *UpstreamHealth {
	state := u.client.BreakerState()
	return &UpstreamHealth{
		Name:          name,
		CircuitState:  state,
		State:         state.String(),
		Counts:        u.client.BreakerCounts(),
		LastSuccessAt: u.lastSuccessAt,
		LastFailureAt: u.lastFailureAt,
		LastError:     u.lastError,
	}
}
