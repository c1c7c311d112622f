package timer

import (
	"time"

	"pgremote/internal/clock"
)

// Interval tracks elapsed time against a configured interval.
//
// A zero interval never expires. Expiry is sticky: once Elapsed reaches the
// interval, Expired keeps returning true until Reset or Start.
type Interval struct {
	clk      clock.Clock
	begin    time.Time
	end      time.Time
	interval time.Duration
	active   bool
}

// NewInterval returns an inactive timer with zero elapsed time.
func NewInterval(clk clock.Clock, interval time.Duration) *Interval {
	clk = clock.OrSystem(clk)
	now := clk.Now()
	return &Interval{
		clk:      clk,
		begin:    now,
		end:      now,
		interval: clampInterval(interval),
	}
}

func clampInterval(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// Start zeroes elapsed time and activates the timer.
func (t *Interval) Start() {
	now := t.clk.Now()
	t.begin = now
	t.end = now
	t.active = true
}

// StartWith sets the interval, then starts.
func (t *Interval) StartWith(interval time.Duration) {
	t.interval = clampInterval(interval)
	t.Start()
}

// Stop freezes elapsed time. No-op when inactive.
func (t *Interval) Stop() {
	if !t.active {
		return
	}
	t.end = t.clk.Now()
	t.active = false
}

// Resume reactivates the timer, keeping the elapsed time accumulated before
// Stop. No-op when active.
func (t *Interval) Resume() {
	if t.active {
		return
	}
	elapsed := t.end.Sub(t.begin)
	now := t.clk.Now()
	t.begin = now.Add(-elapsed)
	t.end = now
	t.active = true
}

// Reset zeroes elapsed time and leaves the active state alone.
func (t *Interval) Reset() {
	now := t.clk.Now()
	t.begin = now
	t.end = now
}

// Elapsed returns the time accumulated since the last Start or Reset.
func (t *Interval) Elapsed() time.Duration {
	if t.active {
		t.end = t.clk.Now()
	}
	return t.end.Sub(t.begin)
}

// Expired reports whether the elapsed time has reached the interval.
func (t *Interval) Expired() bool {
	if t.interval == 0 {
		return false
	}
	return t.Elapsed() >= t.interval
}

// SetInterval changes the interval. Elapsed time is kept.
func (t *Interval) SetInterval(d time.Duration) { t.interval = clampInterval(d) }

func (t *Interval) Interval() time.Duration { return t.interval }

func (t *Interval) Active() bool { return t.active }
