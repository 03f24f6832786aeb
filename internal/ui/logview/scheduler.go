package logview

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/andyrewlee/scrollwin/internal/messages"
	"github.com/andyrewlee/scrollwin/internal/scroller"
)

var _ scroller.Scheduler = (*FrameScheduler)(nil)

// FrameScheduler queues callbacks for the next frame. The bubbletea program
// drives it: Cmd arms a single tick when work is queued, and the resulting
// messages.Frame is handed back to RunFrame.
type FrameScheduler struct {
	interval time.Duration
	next     scroller.FrameHandle
	queue    []func()
	armed    bool
}

// NewFrameScheduler creates a scheduler ticking every interval.
func NewFrameScheduler(interval time.Duration) *FrameScheduler {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &FrameScheduler{interval: interval}
}

// ScheduleOnNextFrame queues fn and returns a non-zero handle.
func (f *FrameScheduler) ScheduleOnNextFrame(fn func()) scroller.FrameHandle {
	f.next++
	f.queue = append(f.queue, fn)
	return f.next
}

// Cmd returns a tick command if callbacks are queued and no tick is already
// in flight.
func (f *FrameScheduler) Cmd() tea.Cmd {
	if len(f.queue) == 0 || f.armed {
		return nil
	}
	f.armed = true
	return tea.Tick(f.interval, func(t time.Time) tea.Msg {
		return messages.Frame{At: t}
	})
}

// RunFrame fires every callback queued before the call. Callbacks queued
// while running wait for the next frame.
func (f *FrameScheduler) RunFrame() {
	f.armed = false
	queue := f.queue
	f.queue = nil
	for _, fn := range queue {
		fn()
	}
}

// Pending returns the number of queued callbacks.
func (f *FrameScheduler) Pending() int { return len(f.queue) }
