package observability

import "sync"

// Metrics provides basic in-memory counters for the polling loop.
type Metrics struct {
	mu            sync.Mutex
	fetches       int64
	fetchFailures int64
	anomalies     int64
	appended      int64
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Fetches       int64
	FetchFailures int64
	Anomalies     int64
	Appended      int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordFetch increments the message-fetch counter.
func (m *Metrics) RecordFetch() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
}

// RecordFetchFailure increments the failed-fetch counter.
func (m *Metrics) RecordFetchFailure() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchFailures++
}

// RecordAnomalies counts fetched messages discarded for belonging to a
// different ticket than the one open.
func (m *Metrics) RecordAnomalies(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.anomalies += int64(n)
}

// RecordAppended counts messages merged into the chat view.
func (m *Metrics) RecordAppended(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appended += int64(n)
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{
		Fetches:       m.fetches,
		FetchFailures: m.fetchFailures,
		Anomalies:     m.anomalies,
		Appended:      m.appended,
	}
}
