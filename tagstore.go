package kwire

import "math"

// tagStore issues correlation ids for one connection.
//
// It is not safe for concurrent use: Conn only touches it with its write lock
// held, in the same critical section that registers the waiter.
type tagStore struct {
	last int32
}

// assign stamps the next id into h and returns it. ids for which inUse returns
// true are skipped, which only matters after the counter wraps.
func (s *tagStore) assign(h *RequestHeader, inUse func(int32) bool) int32 {
	for {
		if s.last == math.MaxInt32 {
			s.last = 0
		}
		s.last++
		if inUse == nil || !inUse(s.last) {
			break
		}
	}
	h.CorrelationID = s.last
	return s.last
}

// resolve returns the id a response answers.
func (s *tagStore) resolve(f Frame) int32 {
	return f.CorrelationID
}
