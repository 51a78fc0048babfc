package driven

import "time"

// Clock is an injectable time source so TTL expiry and wait deadlines
// are testable without sleeping.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// SystemClock is the wall-clock Clock used outside tests.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }
