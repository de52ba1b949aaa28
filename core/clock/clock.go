package clock

import "time"

// Clock abstracts time.Now so cutoff and past-instance rules are
// deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// System returns the real wall clock.
func System() Clock {
	return systemClock{}
}

// Fixed is a clock frozen at T. Tests mutate T directly to move time.
type Fixed struct {
	T time.Time
}

func (f *Fixed) Now() time.Time {
	return f.T
}

// NewFixed returns a clock frozen at t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{T: t}
}
