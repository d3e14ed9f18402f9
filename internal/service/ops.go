package service

import (
	"scribe-ai/backend/internal/circuit"
	"scribe-ai/backend/internal/ratelimit"
)

// OpsSnapshot is the read-only observability view: orchestrator counters,
// per-service breaker states, and rate limiter aggregates.
type OpsSnapshot struct {
	Orchestrator MetricsSnapshot `json:"orchestrator"`
	Breakers     []circuit.Stats `json:"breakers"`
	RateLimiter  ratelimit.Stats `json:"rate_limiter"`
}

// OpsService exposes runtime observability and the operational reset escape
// hatch.
type OpsService struct {
	metrics  *Metrics
	breakers *circuit.Registry
	limiter  *ratelimit.Limiter
}

func NewOpsService(metrics *Metrics, breakers *circuit.Registry, limiter *ratelimit.Limiter) *OpsService {
	return &OpsService{metrics: metrics, breakers: breakers, limiter: limiter}
}

func (s *OpsService) Snapshot() OpsSnapshot {
	return OpsSnapshot{
		Orchestrator: s.metrics.Snapshot(),
		Breakers:     s.breakers.AllStats(),
		RateLimiter:  s.limiter.GetStats(),
	}
}

// Reset clears all counters, force-closes every breaker, and empties the
// rate limiter windows.
func (s *OpsService) Reset() {
	s.metrics.Reset()
	s.breakers.ForceCloseAll()
	s.limiter.Reset()
}
