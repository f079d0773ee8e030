package kwire

import (
	"context"

	"github.com/pior/kwire/api"
)

// BrokerPool wraps the connection pool and the circuit breaker of one broker.
type BrokerPool struct {
	addr           string
	pool           Pool
	circuitBreaker *CircuitBreaker // nil if not configured
}

func (bp *BrokerPool) Address() string {
	return bp.addr
}

func (bp *BrokerPool) Stats() BrokerPoolStats {
	stats := BrokerPoolStats{
		Addr:      bp.addr,
		PoolStats: bp.pool.Stats(),
	}
	if bp.circuitBreaker != nil {
		stats.CircuitBreakerState = bp.circuitBreaker.State()
		stats.CircuitBreakerCounts = bp.circuitBreaker.Counts()
	}
	return stats
}

// Execute sends req to the broker and decodes the answer into resp.
// The call is wrapped with the broker's circuit breaker.
func (bp *BrokerPool) Execute(ctx context.Context, req api.Request, resp api.Response) error {
	if bp.circuitBreaker == nil {
		return bp.execute(ctx, req, resp)
	}

	_, err := bp.circuitBreaker.Execute(func() (bool, error) {
		return true, bp.execute(ctx, req, resp)
	})
	return err
}

func (bp *BrokerPool) execute(ctx context.Context, req api.Request, resp api.Response) error {
	call, err := bp.submit(ctx, req)
	if err != nil {
		return err
	}
	return call.Wait(ctx, resp)
}

// submit writes req on a pooled connection. The connection goes back to the
// pool as soon as the request is written; the response is awaited without it.
// The pool only hands out live connections.
func (bp *BrokerPool) submit(ctx context.Context, req api.Request) (*Call, error) {
	resource, err := bp.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return bp.submitOn(ctx, resource, req)
}

func (bp *BrokerPool) submitOn(ctx context.Context, resource Resource, req api.Request) (*Call, error) {
	released := false
	defer func() {
		// a schema panic must not leak the connection
		if !released {
			resource.Release()
		}
	}()

	conn := resource.Value()

	version, err := conn.Negotiate(req)
	if err != nil {
		return nil, err
	}

	call, err := conn.Submit(ctx, req, version)
	if err != nil {
		if ShouldCloseConnection(err) {
			released = true
			resource.Destroy()
		}
		return nil, err
	}
	return call, nil
}

// catalogue returns the versions advertised by the broker.
func (bp *BrokerPool) catalogue(ctx context.Context) (*Catalogue, error) {
	resource, err := bp.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer resource.Release()

	cat := resource.Value().Catalogue()
	if cat == nil {
		return nil, ErrNoHandshake
	}
	return cat, nil
}
