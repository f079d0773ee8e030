package kwire

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTagStoreAssign(t *testing.T) {
	var s tagStore

	for want := int32(1); want <= 3; want++ {
		var h RequestHeader
		require.Equal(t, want, s.assign(&h, nil))
		require.Equal(t, want, h.CorrelationID)
	}
}

func TestTagStoreResolve(t *testing.T) {
	var s tagStore
	require.Equal(t, int32(42), s.resolve(Frame{CorrelationID: 42}))
}

func TestTagStoreWraparoundSkipsInflight(t *testing.T) {
	s := tagStore{last: math.MaxInt32 - 1}
	inflight := map[int32]bool{1: true, 2: true}
	inUse := func(id int32) bool { return inflight[id] }

	var h RequestHeader
	require.Equal(t, int32(math.MaxInt32), s.assign(&h, inUse))
	require.Equal(t, int32(3), s.assign(&h, inUse))
	require.Equal(t, int32(4), s.assign(&h, inUse))
}
