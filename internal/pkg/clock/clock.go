package clock

import "time"

// Clock supplies "now" to every operation so late and absence thresholds are
// testable without touching the wall clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns the wall clock.
func System() Clock { return systemClock{} }
