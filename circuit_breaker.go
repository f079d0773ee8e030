package kwire

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker guards the calls made to one broker.
type CircuitBreaker = gobreaker.CircuitBreaker[bool]

// NewCircuitBreakerConfig returns a function creating a circuit breaker per
// broker address.
//
// Only failures that break a connection count against the broker: broker error
// codes, decode errors, version mismatches and canceled calls are successes.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(addr string) *CircuitBreaker {
	return func(addr string) *CircuitBreaker {
		settings := gobreaker.Settings{
			Name:        addr,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
			IsSuccessful: func(err error) bool {
				return !ShouldCloseConnection(err)
			},
		}
		return gobreaker.NewCircuitBreaker[bool](settings)
	}
}
