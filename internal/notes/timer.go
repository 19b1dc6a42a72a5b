package notes

import "time"

// StopTimer is the handle over one armed deadline.
type StopTimer interface {
	Stop() bool
}

// StartTimerFunc schedules fn after d and returns a stop handle. The default
// wraps time.AfterFunc; tests inject manual implementations.
type StartTimerFunc func(d time.Duration, fn func()) StopTimer

func startWallTimer(d time.Duration, fn func()) StopTimer {
	return time.AfterFunc(d, fn)
}

// quietTimer is a single-slot cancellable deadline: arming replaces any
// pending deadline, so two resets never run concurrently.
type quietTimer struct {
	start   StartTimerFunc
	pending StopTimer
}

func newQuietTimer(start StartTimerFunc) *quietTimer {
	if start == nil {
		start = startWallTimer
	}
	return &quietTimer{start: start}
}

// Arm schedules fn after d, cancelling any previously armed deadline.
// Callers must hold the owning board's lock.
func (t *quietTimer) Arm(d time.Duration, fn func()) {
	if t.pending != nil {
		t.pending.Stop()
	}
	t.pending = t.start(d, fn)
}

// Cancel stops the pending deadline, if any.
func (t *quietTimer) Cancel() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}
