package app

import (
	"fmt"

	"pgremote/internal/command"
	"pgremote/internal/config"
	"pgremote/internal/task/scheduler"
	logx "pgremote/pkg/logx"
)

func (a *App) lineCommand(line string) command.Command {
	return command.With(a.runLine, line)
}

// buildTasks turns interval schedules into cooperative tasks and registers
// cron schedules with the trigger. Inactive cron tasks are not registered.
func (a *App) buildTasks(tcs []config.TaskConfig) ([]*scheduler.Task, error) {
	var tasks []*scheduler.Task
	for _, tc := range tcs {
		ps, err := scheduler.ParseSchedule(tc.Schedule)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", tc.Name, err)
		}
		switch ps.Kind {
		case scheduler.SpecInterval:
			t := scheduler.NewTask(tc.Name, a.clk, ps.Every, a.lineCommand(tc.Line), tc.IsRepeating())
			if tc.IsActive() {
				t.SetState(scheduler.Active)
			}
			tasks = append(tasks, t)
		case scheduler.SpecCron:
			if !tc.IsActive() {
				continue
			}
			if err := a.trig.Add(tc.Name, tc.Schedule, tc.Line); err != nil {
				return nil, err
			}
		}
	}
	return tasks, nil
}

// applyTaskChanges reconciles the named tasks with cfg. Cron entries are
// swapped immediately; cooperative tasks are updated on the loop. Adding or
// removing a cooperative task needs a restart because the task list is fixed.
func (a *App) applyTaskChanges(cfg *config.Config, names []string, onLoop func(func())) {
	byName := make(map[string]config.TaskConfig, len(cfg.Tasks))
	for _, tc := range cfg.Tasks {
		byName[tc.Name] = tc
	}
	for _, name := range names {
		tc, ok := byName[name]
		a.trig.Remove(name)
		if !ok {
			onLoop(func() {
				if t, found := a.sched.Task(name); found {
					t.SetState(scheduler.Idle)
					a.log.Warn("task removed from config; idled until restart", logx.String("task", name))
				}
			})
			continue
		}
		ps, err := scheduler.ParseSchedule(tc.Schedule)
		if err != nil {
			a.log.Warn("task schedule invalid; skipped", logx.String("task", name), logx.Err(err))
			continue
		}
		if ps.Kind == scheduler.SpecCron {
			onLoop(func() {
				if t, found := a.sched.Task(name); found {
					t.SetState(scheduler.Idle)
				}
			})
			if tc.IsActive() {
				if err := a.trig.Add(tc.Name, tc.Schedule, tc.Line); err != nil {
					a.log.Warn("trigger update failed", logx.String("task", name), logx.Err(err))
				}
			}
			continue
		}
		onLoop(func() {
			t, found := a.sched.Task(name)
			if !found {
				a.log.Warn("new interval task needs a restart", logx.String("task", name))
				return
			}
			ct := t.Timer()
			ct.SetInterval(ps.Every)
			ct.SetRepeats(tc.IsRepeating())
			ct.SetCommand(a.lineCommand(tc.Line))
			if tc.IsActive() {
				t.SetState(scheduler.Active)
			} else {
				t.SetState(scheduler.Idle)
			}
		})
	}
}
