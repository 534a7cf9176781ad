// Package clock paces emulated frames against real wall-clock time.
//
// The DMG runs a single instruction-granularity clock; there is no
// separate per-component cycle scheduler to coordinate the way a
// multi-chip console needs. FrameLimiter keeps the one part of that
// concept this core still needs: sleeping off the difference between
// how long a frame took to emulate and how long it should have taken.
package clock

import "time"

// DMGFrameRate is the real hardware's vertical refresh rate: one frame
// is 70,224 T-cycles at 4.194304 MHz.
const DMGFrameRate = 4194304.0 / 70224.0

// FrameLimiter paces RunFrame calls to a target frame rate.
type FrameLimiter struct {
	Enabled   bool
	FrameTime time.Duration
	last      time.Time
}

// NewFrameLimiter creates a limiter targeting fps frames per second.
func NewFrameLimiter(fps float64) *FrameLimiter {
	return &FrameLimiter{
		Enabled:   true,
		FrameTime: time.Duration(float64(time.Second) / fps),
		last:      time.Now(),
	}
}

// Reset clears the pacing baseline to now, so the next Wait never sleeps
// off time elapsed before the reset (e.g. across a savestate load).
func (l *FrameLimiter) Reset() {
	l.last = time.Now()
}

// Wait sleeps off whatever time remains in this frame's budget, then
// starts the next frame's clock. A no-op when disabled.
func (l *FrameLimiter) Wait() {
	now := time.Now()
	if l.Enabled {
		elapsed := now.Sub(l.last)
		if elapsed < l.FrameTime {
			time.Sleep(l.FrameTime - elapsed)
		}
	}
	l.last = time.Now()
}
