package app

import (
	"context"
	"slices"
	"strings"

	"pgremote/internal/config"
	"pgremote/internal/task/trigger"
	logx "pgremote/pkg/logx"
)

// reloadLoop applies published configs, coalescing bursts to the latest.
func (a *App) reloadLoop(ctx context.Context, sub <-chan *config.Config) {
	last := a.cfgm.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case next, ok := <-sub:
			if !ok {
				return
			}
			for more := true; more; {
				select {
				case newer := <-sub:
					if newer != nil {
						next = newer
					}
				default:
					more = false
				}
			}
			a.applyConfig(ctx, last, next)
			last = next
		}
	}
}

// applyConfig applies the parts of next that can change at runtime.
func (a *App) applyConfig(ctx context.Context, prev, next *config.Config) {
	sections, attrs, tasks := config.SummarizeConfigChange(prev, next)
	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}
	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)

	if config.NeedsRestart(sections) || slices.Contains(sections, "loop") {
		a.log.Warn("config change needs a restart to take effect", fields...)
	}

	onLoop := func(fn func()) { a.post(ctx, fn) }

	if slices.Contains(sections, "logging") {
		a.logs.Apply(mapLoggingConfig(next.Logging))
	}
	if slices.Contains(sections, "protocol.echo") {
		echo := next.Protocol.Echo
		onLoop(func() { a.ctl.SetEcho(echo) })
	}
	if slices.Contains(sections, "scheduler") {
		a.trig.Apply(trigger.Config{Enabled: next.Scheduler.Enabled, Timezone: next.Scheduler.Timezone})
		enabled := next.Scheduler.Enabled
		onLoop(func() {
			if enabled {
				a.sched.Start()
			} else {
				a.sched.Stop()
			}
		})
	}
	if slices.Contains(sections, "debug") {
		a.debug.Reconfigure(ctx, mapDebugConfig(next.Debug))
	}
	if len(tasks) > 0 {
		a.applyTaskChanges(next, tasks, onLoop)
	}
	a.log.Info("config reloaded", fields...)
}
