// ABOUTME: Display-refresh frame scheduling for progress reporting
// ABOUTME: Defines FrameScheduler and a timer-backed implementation
package playback

import (
	"sync/atomic"
	"time"
)

// FrameScheduler runs a callback on the host's next display refresh
type FrameScheduler interface {
	// RequestFrame schedules fn once. The returned cancel func prevents fn
	// from running if it has not started yet; it never waits for fn.
	RequestFrame(fn func()) (cancel func())
}

// TickerFrames schedules frames on a fixed interval using timers
type TickerFrames struct {
	interval time.Duration
}

// NewTickerFrames creates a frame scheduler that fires every interval
func NewTickerFrames(interval time.Duration) *TickerFrames {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &TickerFrames{interval: interval}
}

// RequestFrame schedules fn after one interval
func (f *TickerFrames) RequestFrame(fn func()) func() {
	var cancelled atomic.Bool
	timer := time.AfterFunc(f.interval, func() {
		if !cancelled.Load() {
			fn()
		}
	})
	return func() {
		cancelled.Store(true)
		timer.Stop()
	}
}
