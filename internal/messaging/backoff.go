package messaging

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// fixedSchedule is a backoff.BackOff that walks a literal list of delays
// instead of growing them exponentially. The broker-connect and
// stream-lookup retries in this package use the fixed 5s/30s/60s/120s
// schedule called for by the connection-recovery contract, not an
// exponential one.
type fixedSchedule struct {
	delays []time.Duration
	next   int
}

func newFixedSchedule(delays ...time.Duration) *fixedSchedule {
	return &fixedSchedule{delays: delays}
}

func (s *fixedSchedule) NextBackOff() time.Duration {
	if s.next >= len(s.delays) {
		return backoff.Stop
	}
	d := s.delays[s.next]
	s.next++
	return d
}

func (s *fixedSchedule) Reset() {
	s.next = 0
}

// connectSchedule is the 5s/30s/60s/120s wait sequence used both for the
// initial broker connection and for the stream-lookup that follows it.
func connectSchedule() *fixedSchedule {
	return newFixedSchedule(5*time.Second, 30*time.Second, 60*time.Second, 120*time.Second)
}
