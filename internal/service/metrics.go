package service

import "sync"

// MetricsSnapshot is a point-in-time copy of the orchestrator counters.
type MetricsSnapshot struct {
	TurnsCompleted    int64 `json:"turns_completed"`
	TurnsFailed       int64 `json:"turns_failed"`
	RoundsExecuted    int64 `json:"rounds_executed"`
	ToolCallsExecuted int64 `json:"tool_calls_executed"`
	ToolCallsFailed   int64 `json:"tool_calls_failed"`
	ToolCallsDropped  int64 `json:"tool_calls_dropped"`
	StreamRetries     int64 `json:"stream_retries"`
	BatchesCommitted  int64 `json:"batches_committed"`
	BatchesReplayed   int64 `json:"batches_replayed"`
}

// Metrics aggregates orchestration counters across requests. Safe for
// concurrent use.
type Metrics struct {
	mu       sync.Mutex
	snapshot MetricsSnapshot
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) add(update func(*MetricsSnapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	update(&m.snapshot)
}

func (m *Metrics) TurnCompleted() { m.add(func(s *MetricsSnapshot) { s.TurnsCompleted++ }) }

func (m *Metrics) TurnFailed() { m.add(func(s *MetricsSnapshot) { s.TurnsFailed++ }) }

func (m *Metrics) RoundExecuted() { m.add(func(s *MetricsSnapshot) { s.RoundsExecuted++ }) }

func (m *Metrics) ToolCallExecuted() { m.add(func(s *MetricsSnapshot) { s.ToolCallsExecuted++ }) }

func (m *Metrics) ToolCallFailed() { m.add(func(s *MetricsSnapshot) { s.ToolCallsFailed++ }) }

func (m *Metrics) StreamRetry() { m.add(func(s *MetricsSnapshot) { s.StreamRetries++ }) }

func (m *Metrics) BatchCommitted() { m.add(func(s *MetricsSnapshot) { s.BatchesCommitted++ }) }

func (m *Metrics) BatchReplayed() { m.add(func(s *MetricsSnapshot) { s.BatchesReplayed++ }) }

func (m *Metrics) ToolCallsDropped(n int) {
	m.add(func(s *MetricsSnapshot) { s.ToolCallsDropped += int64(n) })
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

// Reset zeroes all counters.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = MetricsSnapshot{}
}
