package notes

import (
	"sync"
	"testing"
	"time"
)

// manualClock drives quiet-window deadlines by hand so tests stay
// deterministic.
type manualClock struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	stopped := t.stopped
	t.stopped = true
	return !stopped
}

func (c *manualClock) start(d time.Duration, fn func()) StopTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &manualTimer{fn: fn}
	c.pending = append(c.pending, timer)
	return timer
}

// fire runs every armed deadline that has not been stopped, simulating the
// quiet window elapsing.
func (c *manualClock) fire() {
	c.mu.Lock()
	timers := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, timer := range timers {
		if !timer.stopped {
			timer.stopped = true
			timer.fn()
		}
	}
}

func newTestBoard(clock *manualClock) *Board {
	return NewBoard(BoardConfig{StartTimer: clock.start})
}

func note(id, title, content string) Note {
	return Note{ID: id, Title: title, Content: content}
}

func mustBuffer(t *testing.T, board *Board, wantTitle, wantContent string) {
	t.Helper()
	title, content := board.Buffer()
	if title != wantTitle || content != wantContent {
		t.Fatalf("unexpected buffer: title=%q content=%q, want title=%q content=%q",
			title, content, wantTitle, wantContent)
	}
}

func stringPtr(value string) *string {
	return &value
}
