// Package circuit implements a per-service circuit breaker. A breaker trips
// open after a run of consecutive failures and lazily resets to closed the
// first time it is consulted after the cooldown elapses; no background timer
// is involved.
package circuit

import (
	"context"
	"fmt"
	"sync"
	"time"

	app_errors "scribe-ai/backend/internal/errors"
)

// Breaker states.
const (
	StateClosed = "closed"
	StateOpen   = "open"
)

// Config configures a circuit breaker.
type Config struct {
	// FailureThreshold is the number of consecutive failures before the
	// breaker opens.
	FailureThreshold int
	// ResetTimeout is how long the breaker stays open before the next call
	// is allowed through again.
	ResetTimeout time.Duration
}

// DefaultConfig returns the default breaker configuration.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		ResetTimeout:     60 * time.Second,
	}
}

// Stats is a read-only snapshot of a breaker's state.
type Stats struct {
	Service       string    `json:"service"`
	State         string    `json:"state"`
	Failures      int       `json:"failures"`
	TotalCalls    int64     `json:"total_calls"`
	TotalFailures int64     `json:"total_failures"`
	LastFailure   time.Time `json:"last_failure,omitempty"`
}

// Breaker guards calls to a single named service.
type Breaker struct {
	service string
	config  Config

	mu            sync.Mutex
	state         string
	failures      int
	lastFailure   time.Time
	forced        bool
	totalCalls    int64
	totalFailures int64
}

// NewBreaker creates a breaker for the named service.
func NewBreaker(service string, config Config) *Breaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 60 * time.Second
	}
	return &Breaker{
		service: service,
		config:  config,
		state:   StateClosed,
	}
}

// Execute runs op under breaker protection. While the breaker is open and the
// cooldown has not elapsed, it fails fast with ErrCircuitOpen without invoking
// op. The first call after the cooldown closes the breaker and is attempted.
func (b *Breaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.allow(); err != nil {
		return err
	}

	err := op(ctx)
	b.record(err)
	return err
}

// allow checks whether a call may proceed, applying the lazy reset.
func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if !b.forced && time.Since(b.lastFailure) >= b.config.ResetTimeout {
			b.state = StateClosed
			b.failures = 0
		} else {
			return fmt.Errorf("%w: %s", app_errors.ErrCircuitOpen, b.service)
		}
	}

	b.totalCalls++
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.failures = 0
		return
	}

	b.failures++
	b.totalFailures++
	b.lastFailure = time.Now()
	if b.failures >= b.config.FailureThreshold {
		b.state = StateOpen
	}
}

// ForceOpen opens the breaker until ForceClose or Reset; the cooldown does
// not apply while forced.
func (b *Breaker) ForceOpen() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateOpen
	b.forced = true
}

// ForceClose closes the breaker and clears the failure run.
func (b *Breaker) ForceClose() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.forced = false
}

// Reset restores the breaker to its initial closed state, clearing counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.forced = false
	b.totalCalls = 0
	b.totalFailures = 0
	b.lastFailure = time.Time{}
}

// State returns the breaker's current state after applying the lazy reset
// window check (a cooled-down breaker reports closed).
func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && !b.forced && time.Since(b.lastFailure) >= b.config.ResetTimeout {
		return StateClosed
	}
	return b.state
}

// GetStats returns a snapshot of the breaker for observability.
func (b *Breaker) GetStats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		Service:       b.service,
		State:         b.state,
		Failures:      b.failures,
		TotalCalls:    b.totalCalls,
		TotalFailures: b.totalFailures,
		LastFailure:   b.lastFailure,
	}
}

// Registry manages one breaker per service name.
type Registry struct {
	mu       sync.RWMutex
	breakers map[string]*Breaker
	defaults Config
}

// NewRegistry creates a registry that hands out breakers with the given
// default configuration.
func NewRegistry(defaults Config) *Registry {
	if defaults.FailureThreshold <= 0 {
		defaults.FailureThreshold = 5
	}
	if defaults.ResetTimeout <= 0 {
		defaults.ResetTimeout = 60 * time.Second
	}
	return &Registry{
		breakers: make(map[string]*Breaker),
		defaults: defaults,
	}
}

// Get returns the breaker for the named service, creating it on first use.
func (r *Registry) Get(service string) *Breaker {
	r.mu.RLock()
	b, ok := r.breakers[service]
	r.mu.RUnlock()
	if ok {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Double-check after acquiring the write lock.
	if b, ok := r.breakers[service]; ok {
		return b
	}
	b = NewBreaker(service, r.defaults)
	r.breakers[service] = b
	return b
}

// AllStats returns snapshots for every known breaker.
func (r *Registry) AllStats() []Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := make([]Stats, 0, len(r.breakers))
	for _, b := range r.breakers {
		stats = append(stats, b.GetStats())
	}
	return stats
}

// ForceCloseAll closes every breaker. Operational escape hatch.
func (r *Registry) ForceCloseAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.breakers {
		b.ForceClose()
	}
}
