package marker

import (
	"context"
	"time"
)

// TTL is how long a marker suppresses the pipeline once set.
const TTL = 24 * time.Hour

// Store is the narrow read/write contract the orchestrator depends on.
type Store interface {
	// IsSuppressed reports whether a previously set marker has not yet expired.
	IsSuppressed(ctx context.Context) bool
	// SetSuppressed writes a marker expiring TTL from now. The latest call governs expiry.
	SetSuppressed(ctx context.Context)
}

// Clock supplies wall-clock time to stores.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads time.Now.
var SystemClock Clock = ClockFunc(time.Now)

// ExpiryFrom returns the expiry of a marker written at now.
func ExpiryFrom(now time.Time) time.Time {
	return now.Add(TTL)
}

func clockOrSystem(c Clock) Clock {
	if c == nil {
		return SystemClock
	}
	return c
}
