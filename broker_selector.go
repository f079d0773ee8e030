package kwire

import (
	"github.com/zeebo/xxh3"
)

// BrokerSelector picks the index of the broker handling a routing key, such as
// a group id.
type BrokerSelector func(key string, brokerCount int) int

// DefaultBrokerSelector uses Jump Hash over xxh3. Adding a broker moves only
// the keys that now belong to it.
func DefaultBrokerSelector(key string, brokerCount int) int {
	return jumpHash(xxh3.HashString(key), brokerCount)
}

// jumpHash maps key onto one of n buckets (Lamping and Veach, "A Fast, Minimal
// Memory, Consistent Hash Algorithm").
func jumpHash(key uint64, n int) int {
	if n <= 0 {
		return 0
	}

	bucket, next := int64(-1), int64(0)
	for next < int64(n) {
		bucket = next
		key = key*2862933555777941757 + 1
		next = int64(float64(bucket+1) * (float64(1<<31) / float64((key>>33)+1)))
	}
	return int(bucket)
}

// staticSelector is used in tests to always select a specific broker.
func staticSelector(index int) BrokerSelector {
	return func(key string, brokerCount int) int {
		return index % brokerCount
	}
}
