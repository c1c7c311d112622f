package scheduler

import (
	"fmt"
	"time"

	"pgremote/internal/eventbus"
	logx "pgremote/pkg/logx"
)

// Scheduler ticks a fixed list of tasks.
type Scheduler struct {
	tasks []*Task
	state State

	log logx.Logger
	bus eventbus.Bus
	now func() time.Time
}

type Option func(*Scheduler)

// WithTasks sets the initial task list.
func WithTasks(tasks ...*Task) Option {
	return func(s *Scheduler) { s.SetTasks(tasks) }
}

func WithLogger(log logx.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

// WithBus publishes a TaskEvent for every firing.
func WithBus(bus eventbus.Bus) Option {
	return func(s *Scheduler) { s.bus = bus }
}

// New returns an Idle scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{now: time.Now}
	for _, o := range opts {
		o(s)
	}
	if s.log.IsZero() {
		s.log = logx.Nop()
	}
	return s
}

// SetTasks replaces the task list. The slice is copied; nil entries panic.
// Do not call this while another goroutine may be ticking.
func (s *Scheduler) SetTasks(tasks []*Task) {
	cp := make([]*Task, len(tasks))
	for i, t := range tasks {
		if t == nil {
			panic(fmt.Sprintf("scheduler: task %d is nil", i))
		}
		cp[i] = t
	}
	s.tasks = cp
}

func (s *Scheduler) State() State { return s.state }

// Start activates the scheduler and resumes the timers of Active tasks,
// keeping their progress.
func (s *Scheduler) Start() {
	s.state = Active
	for _, t := range s.tasks {
		if t.state == Active {
			t.timer.Resume()
		}
	}
	s.log.Debug("scheduler started", logx.Int("tasks", len(s.tasks)))
}

// Stop makes Tick a no-op. Task timers are left as they are.
func (s *Scheduler) Stop() {
	s.state = Idle
	s.log.Debug("scheduler stopped")
}

// Reset zeroes every task timer.
func (s *Scheduler) Reset() {
	for _, t := range s.tasks {
		t.Reset()
	}
}

// Tick gives every Active task one chance to fire, in list order, and returns
// how many commands ran. It does nothing while the scheduler is Idle.
func (s *Scheduler) Tick() int {
	if s.state != Active {
		return 0
	}
	n := 0
	for _, t := range s.tasks {
		if !t.Tick() {
			continue
		}
		n++
		if s.bus != nil {
			s.bus.Publish(eventbus.Event{
				Type: EventTaskFired,
				Data: TaskEvent{Name: t.name, At: s.now(), Fires: t.fires},
			})
		}
	}
	return n
}

// Task returns the first task with the given name.
func (s *Scheduler) Task(name string) (*Task, bool) {
	for _, t := range s.tasks {
		if t.name == name {
			return t, true
		}
	}
	return nil, false
}

// Tasks returns a copy of the task list.
func (s *Scheduler) Tasks() []*Task {
	return append([]*Task(nil), s.tasks...)
}

// Snapshot describes every task in list order.
func (s *Scheduler) Snapshot() []TaskInfo {
	out := make([]TaskInfo, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, TaskInfo{
			Name:     t.name,
			State:    t.state,
			Interval: t.timer.Interval.Interval(),
			Elapsed:  t.timer.Elapsed(),
			Expired:  t.timer.Expired(),
			Repeats:  t.timer.Repeats(),
			Fires:    t.fires,
		})
	}
	return out
}
