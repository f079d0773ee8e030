package kwire

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultBrokerSelector(t *testing.T) {
	t.Run("consistency", func(t *testing.T) {
		first := DefaultBrokerSelector("group-123", 10)
		for range 4 {
			require.Equal(t, first, DefaultBrokerSelector("group-123", 10))
		}
	})

	t.Run("bounds", func(t *testing.T) {
		keys := []string{"g1", "g2", "g3", "long-group-id-with-many-characters", ""}
		brokerCounts := []int{1, 2, 5, 10, 100}

		for _, key := range keys {
			for _, count := range brokerCounts {
				result := DefaultBrokerSelector(key, count)
				require.True(t, result >= 0 && result < count, "out of bounds: key=%s, brokerCount=%d, result=%d", key, count, result)
			}
		}
	})

	t.Run("distribution", func(t *testing.T) {
		brokerCount := 10
		distribution := make(map[int]int)

		for i := range 100 {
			distribution[DefaultBrokerSelector(fmt.Sprintf("group-%d", i), brokerCount)]++
		}

		require.True(t, len(distribution) >= 5, "poor distribution: only %d brokers used out of %d", len(distribution), brokerCount)
		for broker, count := range distribution {
			require.True(t, count <= 30, "unbalanced distribution: broker %d has %d%% of groups", broker, count)
		}
	})

	t.Run("stability when a broker is added", func(t *testing.T) {
		moved := 0
		for i := range 1000 {
			key := fmt.Sprintf("group-%d", i)
			if DefaultBrokerSelector(key, 10) != DefaultBrokerSelector(key, 11) {
				moved++
			}
		}
		// about 1/11 of the keys move to the new broker
		require.Less(t, moved, 200)
	})
}

func BenchmarkDefaultBrokerSelector(b *testing.B) {
	for b.Loop() {
		DefaultBrokerSelector("benchmark-group-123", 10)
	}
}

func TestJumpHash(t *testing.T) {
	require.Equal(t, 0, jumpHash(42, 0))
	require.Equal(t, 0, jumpHash(42, 1))

	for key := range uint64(200) {
		b := jumpHash(key, 7)
		require.True(t, b >= 0 && b < 7)

		// growing the bucket count either keeps a key or moves it to the new bucket
		if grown := jumpHash(key, 8); grown != b {
			require.Equal(t, 7, grown)
		}
	}
}
