package kwire

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker/v2"
)

// PoolStats contains statistics about a connection pool.
//
// Struct is laid out to fit within a single cache line (64 bytes).
type PoolStats struct {
	// Lifetime counters
	AcquireCount      uint64 // Total acquire attempts
	AcquireWaitCount  uint64 // Acquires that had to wait
	CreatedConns      uint64 // Total connections created
	DestroyedConns    uint64 // Total connections destroyed
	AcquireErrors     uint64 // Failed acquire attempts
	AcquireWaitTimeNs uint64 // Total nanoseconds spent waiting

	// Current state gauges
	TotalConns  int32 // Total connections in pool (active + idle)
	IdleConns   int32 // Idle connections available
	ActiveConns int32 // Connections currently checked out
	_           int32
}

// ClientStats contains statistics about client calls.
type ClientStats struct {
	Requests             uint64 // Calls submitted
	Errors               uint64 // Calls that returned any error
	TransportErrors      uint64 // Calls failed by the connection
	IncompatibleVersions uint64 // Calls refused by version negotiation
	BrokerErrors         uint64 // Responses carrying a non-zero top level error code
	Canceled             uint64 // Calls abandoned by their context
	_                    [2]uint64
}

// UnclassifiedErrors returns the errors no specific counter accounts for.
// It is zero rather than wrapping around when the counters disagree.
func (s ClientStats) UnclassifiedErrors() uint64 {
	other := s.Errors
	for _, n := range []uint64{s.TransportErrors, s.IncompatibleVersions, s.Canceled} {
		if n >= other {
			return 0
		}
		other -= n
	}
	return other
}

// BrokerPoolStats contains stats for a single broker pool.
type BrokerPoolStats struct {
	Addr                 string
	PoolStats            PoolStats
	CircuitBreakerState  gobreaker.State
	CircuitBreakerCounts gobreaker.Counts
}

type poolStatsCollector struct {
	stats PoolStats
}

func (c *poolStatsCollector) recordAcquire() {
	atomic.AddUint64(&c.stats.AcquireCount, 1)
}

func (c *poolStatsCollector) recordAcquireWait(duration time.Duration) {
	atomic.AddUint64(&c.stats.AcquireWaitCount, 1)
	atomic.AddUint64(&c.stats.AcquireWaitTimeNs, uint64(duration.Nanoseconds()))
}

func (c *poolStatsCollector) recordCreate() {
	atomic.AddUint64(&c.stats.CreatedConns, 1)
	atomic.AddInt32(&c.stats.TotalConns, 1)
}

func (c *poolStatsCollector) recordDestroy() {
	atomic.AddUint64(&c.stats.DestroyedConns, 1)
	atomic.AddInt32(&c.stats.TotalConns, -1)
	atomic.AddInt32(&c.stats.ActiveConns, -1)
}

func (c *poolStatsCollector) recordAcquireError() {
	atomic.AddUint64(&c.stats.AcquireErrors, 1)
}

func (c *poolStatsCollector) recordAcquireFromIdle() {
	atomic.AddInt32(&c.stats.IdleConns, -1)
	atomic.AddInt32(&c.stats.ActiveConns, 1)
}

func (c *poolStatsCollector) recordActivate() {
	atomic.AddInt32(&c.stats.ActiveConns, 1)
}

func (c *poolStatsCollector) recordRelease() {
	atomic.AddInt32(&c.stats.IdleConns, 1)
	atomic.AddInt32(&c.stats.ActiveConns, -1)
}

func (c *poolStatsCollector) snapshot() PoolStats {
	return PoolStats{
		TotalConns:        atomic.LoadInt32(&c.stats.TotalConns),
		IdleConns:         atomic.LoadInt32(&c.stats.IdleConns),
		ActiveConns:       atomic.LoadInt32(&c.stats.ActiveConns),
		AcquireCount:      atomic.LoadUint64(&c.stats.AcquireCount),
		AcquireWaitCount:  atomic.LoadUint64(&c.stats.AcquireWaitCount),
		CreatedConns:      atomic.LoadUint64(&c.stats.CreatedConns),
		DestroyedConns:    atomic.LoadUint64(&c.stats.DestroyedConns),
		AcquireErrors:     atomic.LoadUint64(&c.stats.AcquireErrors),
		AcquireWaitTimeNs: atomic.LoadUint64(&c.stats.AcquireWaitTimeNs),
	}
}

type clientStatsCollector struct {
	stats ClientStats
}

func (c *clientStatsCollector) recordRequest() {
	atomic.AddUint64(&c.stats.Requests, 1)
}

// recordError classifies err. nil is ignored.
func (c *clientStatsCollector) recordError(err error) {
	if err == nil {
		return
	}
	atomic.AddUint64(&c.stats.Errors, 1)

	switch {
	case errors.Is(err, ErrTransportFailure):
		atomic.AddUint64(&c.stats.TransportErrors, 1)
	case errors.Is(err, ErrIncompatibleVersion):
		atomic.AddUint64(&c.stats.IncompatibleVersions, 1)
	case isContextError(err):
		atomic.AddUint64(&c.stats.Canceled, 1)
	}
}

func (c *clientStatsCollector) recordBrokerError() {
	atomic.AddUint64(&c.stats.BrokerErrors, 1)
}

// snapshot loads the kind counters before Errors: recordError bumps Errors
// first, so every kind seen here is already included in Errors.
func (c *clientStatsCollector) snapshot() ClientStats {
	s := ClientStats{
		TransportErrors:      atomic.LoadUint64(&c.stats.TransportErrors),
		IncompatibleVersions: atomic.LoadUint64(&c.stats.IncompatibleVersions),
		BrokerErrors:         atomic.LoadUint64(&c.stats.BrokerErrors),
		Canceled:             atomic.LoadUint64(&c.stats.Canceled),
	}
	s.Errors = atomic.LoadUint64(&c.stats.Errors)
	s.Requests = atomic.LoadUint64(&c.stats.Requests)
	return s
}
