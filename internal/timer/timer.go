package timer

import (
	"sync/atomic"
	"time"
)

// clock contains the unix-time in milliseconds updated every [Resolution] milliseconds
var clock = new(atomic.Int64)

// Now returns the coarse current time. It may lag behind the real time by at most
// [Resolution].
func Now() time.Time {
	millis := clock.Load()
	return time.Unix(millis/1000, (millis%1000)*1e6)
}

// Resolution is the frequency at which time is updated. Default 500ms are
// precise enough for setting I/O deadlines
const Resolution = 500 * time.Millisecond

// Deadline returns the moment d after now. Zero duration means no deadline, so the zero
// time is returned, which net.Conn treats as "never".
func Deadline(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}

	return Now().Add(d)
}

// Earliest returns the earliest of two deadlines, treating zero time as infinity.
func Earliest(a, b time.Time) time.Time {
	switch {
	case a.IsZero():
		return b
	case b.IsZero():
		return a
	case a.Before(b):
		return a
	default:
		return b
	}
}

func init() {
	// there is no guarantee that the goroutine will be started immediately. If it won't,
	// some rapid usage of the timer will result in zero-time, which isn't great actually
	clock.Store(time.Now().UnixMilli())

	go func() {
		for {
			clock.Store(time.Now().UnixMilli())
			time.Sleep(Resolution)
		}
	}()
}
