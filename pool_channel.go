package kwire

import (
	"context"
	"sync"
	"time"
)

// NewChannelPool creates a connection pool without a background goroutine.
//
// Acquire hands out the idle connection with the fewest calls waiting for a
// response, and discards idle connections that have failed since their release.
func NewChannelPool(constructor func(ctx context.Context) (*Conn, error), maxSize int32) (Pool, error) {
	return &channelPool{
		constructor: constructor,
		maxSize:     maxSize,
		released:    make(chan struct{}, maxSize),
	}, nil
}

type channelResource struct {
	conn         *Conn
	pool         *channelPool
	creationTime time.Time
	lastUsedTime time.Time
}

func (r *channelResource) Value() *Conn {
	return r.conn
}

func (r *channelResource) Release() {
	r.lastUsedTime = time.Now()
	r.pool.put(r)
}

// ReleaseUnused returns the connection without counting it as used.
func (r *channelResource) ReleaseUnused() {
	r.pool.put(r)
}

func (r *channelResource) Destroy() {
	_ = r.conn.Close()
	r.pool.removeResource()
}

func (r *channelResource) CreationTime() time.Time {
	return r.creationTime
}

func (r *channelResource) IdleDuration() time.Duration {
	return time.Since(r.lastUsedTime)
}

type channelPool struct {
	constructor func(ctx context.Context) (*Conn, error)
	maxSize     int32

	mu     sync.Mutex
	idle   []*channelResource
	size   int32
	closed bool

	// released receives a token whenever a connection is returned or a slot
	// frees up. Closed with the pool.
	released chan struct{}

	stats poolStatsCollector
}

func (p *channelPool) Acquire(ctx context.Context) (Resource, error) {
	p.stats.recordAcquire()

	var waitStart time.Time
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			p.stats.recordAcquireError()
			return nil, ErrClientClosed
		}

		if res := p.takeLeastPending(); res != nil {
			p.mu.Unlock()
			p.stats.recordAcquireFromIdle()
			if res.conn.Err() != nil {
				res.Destroy()
				continue
			}
			if !waitStart.IsZero() {
				p.stats.recordAcquireWait(time.Since(waitStart))
			}
			return res, nil
		}

		if p.size < p.maxSize {
			p.size++
			p.mu.Unlock()
			return p.create(ctx)
		}
		p.mu.Unlock()

		// full: wait for a release
		if waitStart.IsZero() {
			waitStart = time.Now()
		}
		select {
		case <-p.released:
		case <-ctx.Done():
			p.stats.recordAcquireError()
			return nil, ctx.Err()
		}
	}
}

// create fills a slot reserved by the caller.
func (p *channelPool) create(ctx context.Context) (Resource, error) {
	conn, err := p.constructor(ctx)
	if err != nil {
		p.mu.Lock()
		p.size--
		p.signal()
		p.mu.Unlock()
		p.stats.recordAcquireError()
		return nil, err
	}

	p.stats.recordCreate()
	p.stats.recordActivate()

	now := time.Now()
	return &channelResource{
		conn:         conn,
		pool:         p,
		creationTime: now,
		lastUsedTime: now,
	}, nil
}

// takeLeastPending removes and returns the idle connection with the fewest
// calls in flight. Must be called with p.mu held.
func (p *channelPool) takeLeastPending() *channelResource {
	if len(p.idle) == 0 {
		return nil
	}

	best, bestPending := 0, p.idle[0].conn.Pending()
	for i := 1; i < len(p.idle) && bestPending > 0; i++ {
		if n := p.idle[i].conn.Pending(); n < bestPending {
			best, bestPending = i, n
		}
	}

	res := p.idle[best]
	last := len(p.idle) - 1
	p.idle[best] = p.idle[last]
	p.idle[last] = nil
	p.idle = p.idle[:last]
	return res
}

// signal wakes one waiting Acquire. Must be called with p.mu held.
func (p *channelPool) signal() {
	if p.closed {
		return
	}
	select {
	case p.released <- struct{}{}:
	default:
	}
}

func (p *channelPool) put(res *channelResource) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		_ = res.conn.Close()
		return
	}

	p.idle = append(p.idle, res)
	p.stats.recordRelease()
	p.signal()
}

func (p *channelPool) removeResource() {
	p.mu.Lock()
	p.size--
	p.signal()
	p.mu.Unlock()
	p.stats.recordDestroy()
}

func (p *channelPool) AcquireAllIdle() []Resource {
	p.mu.Lock()
	defer p.mu.Unlock()

	idle := make([]Resource, 0, len(p.idle))
	for _, res := range p.idle {
		p.stats.recordAcquireFromIdle()
		idle = append(idle, res)
	}
	clear(p.idle)
	p.idle = p.idle[:0]
	return idle
}

func (p *channelPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	close(p.released)
	for _, res := range p.idle {
		_ = res.conn.Close()
	}
	p.idle = nil
}

func (p *channelPool) Stats() PoolStats {
	return p.stats.snapshot()
}
