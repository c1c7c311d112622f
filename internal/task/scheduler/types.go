package scheduler

import (
	"fmt"
	"time"

	"pgremote/internal/clock"
	"pgremote/internal/command"
	"pgremote/internal/timer"
)

// State is the run state of a task or of the scheduler itself.
type State int

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

// Task is a named CommandTimer that only advances while Active.
type Task struct {
	name  string
	timer *timer.CommandTimer
	state State
	fires uint64
}

// NewTask returns an Idle task. cmd must not be nil.
func NewTask(name string, clk clock.Clock, interval time.Duration, cmd command.Command, repeats bool) *Task {
	if command.IsNil(cmd) {
		panic(fmt.Sprintf("scheduler: task %q: nil command", name))
	}
	return &Task{
		name:  name,
		timer: timer.NewCommandTimer(clk, interval, cmd, repeats),
	}
}

func (t *Task) Name() string { return t.name }

func (t *Task) State() State { return t.state }

// SetState resumes the timer when Active and stops it when Idle.
func (t *Task) SetState(s State) {
	t.state = s
	if s == Active {
		t.timer.Resume()
	} else {
		t.timer.Stop()
	}
}

// Reset zeroes the timer's progress without touching the state.
func (t *Task) Reset() { t.timer.Reset() }

// Tick advances the timer if the task is Active. It reports whether the
// command ran.
func (t *Task) Tick() bool {
	if t.state != Active {
		return false
	}
	if !t.timer.Tick() {
		return false
	}
	t.fires++
	return true
}

// Timer exposes the underlying CommandTimer, e.g. to change the interval.
func (t *Task) Timer() *timer.CommandTimer { return t.timer }

// Fires returns how many times the task has fired.
func (t *Task) Fires() uint64 { return t.fires }

// TaskInfo is a point-in-time view of a task.
type TaskInfo struct {
	Name     string
	State    State
	Interval time.Duration
	Elapsed  time.Duration
	Expired  bool
	Repeats  bool
	Fires    uint64
}

// TaskEvent is published on the event bus each time a task fires.
type TaskEvent struct {
	Name  string    `json:"name"`
	At    time.Time `json:"at"`
	Fires uint64    `json:"fires"`
}

// EventTaskFired is the event bus type for TaskEvent.
const EventTaskFired = "task.fired"
