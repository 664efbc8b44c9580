package goAuthClient

import "sync/atomic"

// MetricID names a counter tracked by the Manager.
type MetricID uint16

const (
	// MetricRestoreSuccess counts cold-start restores that ended authenticated.
	MetricRestoreSuccess MetricID = iota
	// MetricRestoreDemoted counts restores whose persisted token the backend
	// rejected.
	MetricRestoreDemoted
	// MetricRestoreEmpty counts cold starts with no persisted token at all.
	MetricRestoreEmpty
	// MetricLoginSuccess counts successful password logins.
	MetricLoginSuccess
	// MetricLoginFailure counts rejected or failed password logins.
	MetricLoginFailure
	// MetricRegisterSuccess counts successful registrations.
	MetricRegisterSuccess
	// MetricRegisterFailure counts rejected or failed registrations.
	MetricRegisterFailure
	// MetricOAuthSuccess counts OAuth logins that ended authenticated.
	MetricOAuthSuccess
	// MetricOAuthCancelled counts consent screens dismissed by the user.
	MetricOAuthCancelled
	// MetricOAuthFailure counts all other OAuth failures.
	MetricOAuthFailure
	// MetricProfileUpdated counts committed profile updates.
	MetricProfileUpdated
	// MetricProfileNoChanges counts updates short-circuited without a network call.
	MetricProfileNoChanges
	// MetricResetRequested counts password-reset code requests.
	MetricResetRequested
	// MetricResetConfirmed counts completed password resets.
	MetricResetConfirmed
	// MetricLogout counts logouts.
	MetricLogout
	// MetricBusyRejected counts operations rejected by the single-flight guard.
	MetricBusyRejected

	metricIDCount
)

// padded to a cache line so adjacent counters never false-share.
type paddedCounter struct {
	value uint64
	_     [7]uint64
}

// Metrics is a fixed set of lock-free counters. Incrementing is wait-free;
// snapshots are cheap enough to poll from a debug screen.
type Metrics struct {
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

func (m *Metrics) inc(id MetricID) {
	if m == nil || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value returns a single counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return snap
}
