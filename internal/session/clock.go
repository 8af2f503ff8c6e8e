package session

import "time"

// Clock abstracts ticker creation so the display timer can be driven
// manually in tests.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// Ticker is the subset of time.Ticker the session loop needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realClock struct{}

// RealClock returns a Clock backed by the system clock.
func RealClock() Clock {
	return realClock{}
}

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (rt *realTicker) C() <-chan time.Time {
	return rt.t.C
}

func (rt *realTicker) Stop() {
	rt.t.Stop()
}
