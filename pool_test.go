package kwire

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pior/kwire/api"
	"github.com/pior/kwire/internal/testutils"
)

var poolFactories = map[string]PoolFactory{
	"channel": NewChannelPool,
	"puddle":  NewPuddlePool,
}

func mockConnConstructor(created *[]*testutils.ConnectionMock) func(ctx context.Context) (*Conn, error) {
	return func(ctx context.Context) (*Conn, error) {
		mock := testutils.NewConnectionMock()
		*created = append(*created, mock)
		return NewConn(mock, ConnConfig{}), nil
	}
}

func TestPoolAcquireRelease(t *testing.T) {
	for name, factory := range poolFactories {
		t.Run(name, func(t *testing.T) {
			var created []*testutils.ConnectionMock
			pool, err := factory(mockConnConstructor(&created), 2)
			require.NoError(t, err)
			defer pool.Close()

			ctx := context.Background()

			res, err := pool.Acquire(ctx)
			require.NoError(t, err)
			require.NotNil(t, res.Value())
			assert.False(t, res.CreationTime().IsZero())
			first := res.Value()
			res.Release()

			res, err = pool.Acquire(ctx)
			require.NoError(t, err)
			assert.Same(t, first, res.Value(), "idle connection is reused")
			res.Release()

			assert.Len(t, created, 1)
		})
	}
}

func TestPoolMaxSize(t *testing.T) {
	for name, factory := range poolFactories {
		t.Run(name, func(t *testing.T) {
			var created []*testutils.ConnectionMock
			pool, err := factory(mockConnConstructor(&created), 2)
			require.NoError(t, err)
			defer pool.Close()

			ctx := context.Background()

			r1, err := pool.Acquire(ctx)
			require.NoError(t, err)
			r2, err := pool.Acquire(ctx)
			require.NoError(t, err)
			assert.NotSame(t, r1.Value(), r2.Value())

			short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()
			_, err = pool.Acquire(short)
			require.ErrorIs(t, err, context.DeadlineExceeded)

			r1.Release()
			r3, err := pool.Acquire(ctx)
			require.NoError(t, err)
			assert.Same(t, r1.Value(), r3.Value())

			r2.Release()
			r3.Release()
		})
	}
}

func TestPoolDestroy(t *testing.T) {
	for name, factory := range poolFactories {
		t.Run(name, func(t *testing.T) {
			var created []*testutils.ConnectionMock
			pool, err := factory(mockConnConstructor(&created), 1)
			require.NoError(t, err)
			defer pool.Close()

			ctx := context.Background()

			res, err := pool.Acquire(ctx)
			require.NoError(t, err)
			res.Destroy()

			require.Eventually(t, func() bool { return created[0].Closed() }, time.Second, 5*time.Millisecond)

			// the slot is free again
			res, err = pool.Acquire(ctx)
			require.NoError(t, err)
			res.Release()
		})
	}
}

func TestPoolAcquireAllIdle(t *testing.T) {
	for name, factory := range poolFactories {
		t.Run(name, func(t *testing.T) {
			var created []*testutils.ConnectionMock
			pool, err := factory(mockConnConstructor(&created), 3)
			require.NoError(t, err)
			defer pool.Close()

			ctx := context.Background()

			var held []Resource
			for range 3 {
				res, err := pool.Acquire(ctx)
				require.NoError(t, err)
				held = append(held, res)
			}
			held[0].Release()
			held[1].Release()

			idle := pool.AcquireAllIdle()
			assert.Len(t, idle, 2)
			for _, res := range idle {
				res.ReleaseUnused()
			}
			held[2].Release()
		})
	}
}

func TestPoolConstructorError(t *testing.T) {
	for name, factory := range poolFactories {
		t.Run(name, func(t *testing.T) {
			boom := errors.New("dial failed")
			pool, err := factory(func(ctx context.Context) (*Conn, error) { return nil, boom }, 1)
			require.NoError(t, err)
			defer pool.Close()

			_, err = pool.Acquire(context.Background())
			require.ErrorIs(t, err, boom)
		})
	}
}

func TestPoolClose(t *testing.T) {
	for name, factory := range poolFactories {
		t.Run(name, func(t *testing.T) {
			var created []*testutils.ConnectionMock
			pool, err := factory(mockConnConstructor(&created), 1)
			require.NoError(t, err)

			res, err := pool.Acquire(context.Background())
			require.NoError(t, err)
			res.Release()

			pool.Close()
			require.Eventually(t, func() bool { return created[0].Closed() }, time.Second, 5*time.Millisecond)

			_, err = pool.Acquire(context.Background())
			require.Error(t, err)
		})
	}
}

func TestChannelPoolCloseIsIdempotent(t *testing.T) {
	var created []*testutils.ConnectionMock
	pool, err := NewChannelPool(mockConnConstructor(&created), 1)
	require.NoError(t, err)

	pool.Close()
	pool.Close()

	_, err = pool.Acquire(context.Background())
	require.ErrorIs(t, err, ErrClientClosed)
}

func TestPoolSkipsConnectionsThatFailedWhileIdle(t *testing.T) {
	for name, factory := range poolFactories {
		t.Run(name, func(t *testing.T) {
			var created []*testutils.ConnectionMock
			pool, err := factory(mockConnConstructor(&created), 2)
			require.NoError(t, err)
			defer pool.Close()

			ctx := context.Background()

			res, err := pool.Acquire(ctx)
			require.NoError(t, err)
			dead := res.Value()
			res.Release()

			// the broker hangs up while the connection sits idle
			require.NoError(t, created[0].Close())
			require.Eventually(t, func() bool { return dead.Err() != nil }, time.Second, 5*time.Millisecond)

			res, err = pool.Acquire(ctx)
			require.NoError(t, err)
			assert.NotSame(t, dead, res.Value())
			assert.NoError(t, res.Value().Err())
			res.Release()

			assert.Len(t, created, 2)
			require.Eventually(t, func() bool { return pool.Stats().DestroyedConns == 1 }, time.Second, 5*time.Millisecond)
		})
	}
}

func TestChannelPoolPrefersLeastPendingConnection(t *testing.T) {
	var created []*testutils.ConnectionMock
	pool, err := NewChannelPool(mockConnConstructor(&created), 3)
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()

	var held []Resource
	for range 3 {
		res, err := pool.Acquire(ctx)
		require.NoError(t, err)
		held = append(held, res)
	}

	// the mock broker never answers, so these calls stay in flight
	for _, i := range []int{0, 2} {
		_, err := held[i].Value().Submit(ctx, &api.HeartbeatRequest{GroupID: "g"}, 0)
		require.NoError(t, err)
		require.Equal(t, 1, held[i].Value().Pending())
	}
	free := held[1].Value()
	for _, res := range held {
		res.Release()
	}

	res, err := pool.Acquire(ctx)
	require.NoError(t, err)
	assert.Same(t, free, res.Value())
	res.Release()
}

func TestChannelPoolReleaseWakesWaiter(t *testing.T) {
	var created []*testutils.ConnectionMock
	pool, err := NewChannelPool(mockConnConstructor(&created), 1)
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()

	held, err := pool.Acquire(ctx)
	require.NoError(t, err)

	acquired := make(chan Resource)
	go func() {
		res, err := pool.Acquire(ctx)
		if err == nil {
			acquired <- res
		}
	}()

	select {
	case <-acquired:
		t.Fatal("acquire should wait while the pool is full")
	case <-time.After(20 * time.Millisecond):
	}

	held.Release()

	select {
	case res := <-acquired:
		assert.Same(t, held.Value(), res.Value())
		res.Release()
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken by the release")
	}

	assert.Equal(t, uint64(1), pool.Stats().AcquireWaitCount)
}

func TestChannelPoolDestroyWakesWaiter(t *testing.T) {
	var created []*testutils.ConnectionMock
	pool, err := NewChannelPool(mockConnConstructor(&created), 1)
	require.NoError(t, err)
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	held, err := pool.Acquire(ctx)
	require.NoError(t, err)

	go func() {
		time.Sleep(10 * time.Millisecond)
		held.Destroy()
	}()

	res, err := pool.Acquire(ctx)
	require.NoError(t, err)
	assert.NotSame(t, held.Value(), res.Value())
	res.Release()
	assert.Len(t, created, 2)
}
