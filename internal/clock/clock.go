// Package clock abstracts "now" so the pipeline's date arithmetic
// (the is-past annotation, run timestamps) is testable with a frozen
// reference time.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// systemClock reads the wall clock.
type systemClock struct{}

// NewSystem returns a Clock backed by the wall clock.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// fixedClock always reports the same instant.
type fixedClock struct {
	t time.Time
}

// NewFixed returns a Clock frozen at t.
func NewFixed(t time.Time) Clock {
	return fixedClock{t: t}
}

func (c fixedClock) Now() time.Time {
	return c.t
}
