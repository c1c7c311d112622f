package config

import (
	"reflect"
	"strings"

	logx "pgremote/pkg/logx"
)

// Sections that only take effect after a restart.
var restartSections = map[string]bool{"transport": true, "storage": true, "protocol.framing": true}

// NeedsRestart reports whether any of the changed sections cannot be applied live.
func NeedsRestart(changed []string) bool {
	for _, c := range changed {
		if restartSections[c] {
			return true
		}
	}
	return false
}

// SummarizeConfigChange returns the changed section names, log fields that
// describe the new values, and the names of tasks that were added, removed or
// edited.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field, []string) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}
	var (
		changed []string
		attrs   []logx.Field
	)

	if !reflect.DeepEqual(oldCfg.Logging, newCfg.Logging) {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.file", newCfg.Logging.File.Enabled),
			logx.Bool("logging.peer", newCfg.Logging.Peer.Enabled),
		)
	}

	if !reflect.DeepEqual(oldCfg.Transport, newCfg.Transport) {
		changed = append(changed, "transport")
		attrs = append(attrs, logx.String("transport.kind", strings.TrimSpace(newCfg.Transport.Kind)))
	}

	op, np := oldCfg.Protocol, newCfg.Protocol
	if op.Echo != np.Echo {
		changed = append(changed, "protocol.echo")
		attrs = append(attrs, logx.Bool("protocol.echo", np.Echo))
	}
	op.Echo, np.Echo = false, false
	if op != np {
		changed = append(changed, "protocol.framing")
	}

	if oldCfg.Loop != newCfg.Loop {
		changed = append(changed, "loop")
		attrs = append(attrs, logx.String("loop.interval", newCfg.Loop.Interval), logx.Bool("loop.watchdog", newCfg.Loop.Watchdog))
	}

	if oldCfg.Scheduler != newCfg.Scheduler {
		changed = append(changed, "scheduler")
		attrs = append(attrs,
			logx.Bool("scheduler.enabled", newCfg.Scheduler.Enabled),
			logx.String("scheduler.timezone", strings.TrimSpace(newCfg.Scheduler.Timezone)),
		)
	}

	tasks := diffTasks(oldCfg.Tasks, newCfg.Tasks)
	if len(tasks) > 0 {
		changed = append(changed, "tasks")
		attrs = append(attrs, logx.Int("tasks.count", len(newCfg.Tasks)), logx.Int("tasks.changed", len(tasks)))
	}

	if oldCfg.Debug != newCfg.Debug {
		changed = append(changed, "debug")
		attrs = append(attrs, logx.Bool("debug.enabled", newCfg.Debug.Enabled), logx.String("debug.addr", newCfg.Debug.Addr))
	}

	if !reflect.DeepEqual(oldCfg.Storage, newCfg.Storage) {
		changed = append(changed, "storage")
		if newCfg.Storage != nil {
			attrs = append(attrs, logx.String("storage.driver", newCfg.Storage.Driver))
		}
	}
	return changed, attrs, tasks
}

// diffTasks lists task names in old-then-new order whose definition differs.
func diffTasks(oldT, newT []TaskConfig) []string {
	oldM := make(map[string]TaskConfig, len(oldT))
	for _, t := range oldT {
		oldM[t.Name] = t
	}
	newM := make(map[string]TaskConfig, len(newT))
	for _, t := range newT {
		newM[t.Name] = t
	}
	var out []string
	for _, t := range oldT {
		if _, ok := newM[t.Name]; !ok {
			out = append(out, t.Name)
		}
	}
	for _, t := range newT {
		o, ok := oldM[t.Name]
		if !ok || !reflect.DeepEqual(o, t) {
			out = append(out, t.Name)
		}
	}
	return out
}
