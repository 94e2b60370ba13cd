package oxonium

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordBuild is called after each BuildIndex. records is the catalog
	// size, err is nil if successful.
	RecordBuild(records int, duration time.Duration, err error)

	// RecordMatch is called after each Match. hits is the number of
	// equivalence classes with at least one fragment match.
	RecordMatch(hits int, duration time.Duration)

	// RecordSnapshot is called after each snapshot save or load. op is
	// "save" or "load", size is the blob size in bytes.
	RecordSnapshot(op string, size int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, time.Duration, error)            {}
func (NoopMetricsCollector) RecordMatch(int, time.Duration)                   {}
func (NoopMetricsCollector) RecordSnapshot(string, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount      atomic.Int64
	BuildErrors     atomic.Int64
	BuildTotalNanos atomic.Int64

	MatchCount      atomic.Int64
	MatchTotalHits  atomic.Int64
	MatchTotalNanos atomic.Int64

	SnapshotCount  atomic.Int64
	SnapshotErrors atomic.Int64
	SnapshotBytes  atomic.Int64
}

func (m *BasicMetricsCollector) RecordBuild(_ int, duration time.Duration, err error) {
	m.BuildCount.Add(1)
	m.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.BuildErrors.Add(1)
	}
}

func (m *BasicMetricsCollector) RecordMatch(hits int, duration time.Duration) {
	m.MatchCount.Add(1)
	m.MatchTotalHits.Add(int64(hits))
	m.MatchTotalNanos.Add(duration.Nanoseconds())
}

func (m *BasicMetricsCollector) RecordSnapshot(_ string, size int, _ time.Duration, err error) {
	m.SnapshotCount.Add(1)
	m.SnapshotBytes.Add(int64(size))
	if err != nil {
		m.SnapshotErrors.Add(1)
	}
}

// Stats is a point-in-time view of a BasicMetricsCollector.
type Stats struct {
	BuildCount    int64
	BuildErrors   int64
	BuildAvgNanos int64

	MatchCount    int64
	MatchAvgHits  int64
	MatchAvgNanos int64

	SnapshotCount  int64
	SnapshotErrors int64
	SnapshotBytes  int64
}

// GetStats returns current aggregate statistics.
func (m *BasicMetricsCollector) GetStats() Stats {
	s := Stats{
		BuildCount:     m.BuildCount.Load(),
		BuildErrors:    m.BuildErrors.Load(),
		MatchCount:     m.MatchCount.Load(),
		SnapshotCount:  m.SnapshotCount.Load(),
		SnapshotErrors: m.SnapshotErrors.Load(),
		SnapshotBytes:  m.SnapshotBytes.Load(),
	}
	if s.BuildCount > 0 {
		s.BuildAvgNanos = m.BuildTotalNanos.Load() / s.BuildCount
	}
	if s.MatchCount > 0 {
		s.MatchAvgHits = m.MatchTotalHits.Load() / s.MatchCount
		s.MatchAvgNanos = m.MatchTotalNanos.Load() / s.MatchCount
	}
	return s
}
