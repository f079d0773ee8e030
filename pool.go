package kwire

import (
	"context"
	"time"
)

// Pool holds the connections to one broker.
//
// Connections are multiplexed: a caller holds a Resource only while it writes
// its request, and releases it before waiting for the response.
type Pool interface {
	Acquire(ctx context.Context) (Resource, error)
	AcquireAllIdle() []Resource
	Close()
	Stats() PoolStats
}

// Resource is a connection checked out of a Pool.
type Resource interface {
	Value() *Conn
	Release()
	ReleaseUnused()
	Destroy()
	CreationTime() time.Time
	IdleDuration() time.Duration
}

// PoolFactory builds a Pool from a connection constructor.
type PoolFactory func(constructor func(ctx context.Context) (*Conn, error), maxSize int32) (Pool, error)
