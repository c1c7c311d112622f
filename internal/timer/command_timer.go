package timer

import (
	"time"

	"pgremote/internal/clock"
	"pgremote/internal/command"
)

// CommandTimer runs a command each time its interval expires.
//
// Expiry is only checked by Tick. After firing, a repeating timer resets and
// keeps running; a one-shot timer stops and is not serviced again until it is
// started or resumed.
type CommandTimer struct {
	*Interval

	cmd     command.Command
	repeats bool
}

func NewCommandTimer(clk clock.Clock, interval time.Duration, cmd command.Command, repeats bool) *CommandTimer {
	return &CommandTimer{
		Interval: NewInterval(clk, interval),
		cmd:      cmd,
		repeats:  repeats,
	}
}

// Tick executes the command if the timer is active and expired. A nil command
// is skipped but the timer still resets or stops. It reports whether the timer
// fired.
func (t *CommandTimer) Tick() bool {
	if !t.Active() || !t.Expired() {
		return false
	}
	command.Execute(t.cmd)
	if t.repeats {
		t.Reset()
	} else {
		t.Stop()
	}
	return true
}

func (t *CommandTimer) SetCommand(cmd command.Command) { t.cmd = cmd }
func (t *CommandTimer) Command() command.Command       { return t.cmd }

func (t *CommandTimer) SetRepeats(v bool) { t.repeats = v }
func (t *CommandTimer) Repeats() bool     { return t.repeats }
