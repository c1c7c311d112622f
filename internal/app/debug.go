package app

import (
	"context"
	"time"

	"pgremote/internal/config"
	"pgremote/internal/eventbus"
	"pgremote/internal/observability/pprof"
	"pgremote/internal/runtime/supervisor"
	"pgremote/internal/storage"
	"pgremote/internal/task/scheduler"
	"pgremote/internal/task/trigger"
	"pgremote/internal/transport"
	logx "pgremote/pkg/logx"
)

// statusJournal is how many recent journal records /status includes.
const statusJournal = 20

func mapDebugConfig(dc config.DebugConfig) pprof.Config {
	read, _ := config.ParseDurationOrDefault("debug.read_timeout", dc.ReadTimeout, 5*time.Second)
	idle, _ := config.ParseDurationOrDefault("debug.idle_timeout", dc.IdleTimeout, 120*time.Second)
	return pprof.Config{
		Enabled:              dc.Enabled,
		Addr:                 dc.Addr,
		Token:                dc.Token,
		AllowInsecure:        dc.AllowInsecure,
		ReadTimeout:          read,
		IdleTimeout:          idle,
		MutexProfileFraction: dc.MutexProfileFraction,
		BlockProfileRate:     dc.BlockProfileRate,
	}
}

// Status is the document served at /status by the debug server.
type Status struct {
	Session    string                      `json:"session"`
	Port       string                      `json:"port"`
	Uptime     string                      `json:"uptime"`
	Scheduler  string                      `json:"scheduler"`
	Echo       bool                        `json:"echo"`
	Dispatches int64                       `json:"dispatches"`
	Buffered   int                         `json:"buffered"`
	Pending    string                      `json:"pending,omitempty"`
	Transport  transport.Stats             `json:"transport"`
	Tasks      []scheduler.TaskInfo        `json:"tasks"`
	Triggers   []trigger.EntryInfo         `json:"triggers"`
	Bus        eventbus.Stats              `json:"bus"`
	Goroutines []supervisor.GoroutineStats `json:"goroutines,omitempty"`
	Journal    []storage.Record            `json:"journal,omitempty"`
}

// status collects a Status on the loop goroutine.
func (a *App) status(ctx context.Context) (any, error) {
	done := make(chan Status, 1)
	if !a.post(ctx, func() { done <- a.snapshot() }) {
		return nil, ctx.Err()
	}
	var st Status
	select {
	case st = <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	// The store is safe for concurrent use; read it off the loop.
	if a.store != nil {
		recs, err := a.store.Recent(ctx, statusJournal)
		if err != nil {
			a.log.Debug("status: journal read failed", logx.Err(err))
		}
		st.Journal = recs
	}
	return st, nil
}

// snapshot must run on the loop goroutine.
func (a *App) snapshot() Status {
	st := Status{
		Session:    a.session,
		Port:       a.port.Name(),
		Uptime:     a.uptime.Elapsed().Truncate(time.Second).String(),
		Scheduler:  a.sched.State().String(),
		Echo:       a.ctl.Echo(),
		Dispatches: a.dispatches.Count(),
		Buffered:   a.ctl.Buffered(),
		Pending:    a.ctl.Pending(),
		Transport:  a.pump.Stats(),
		Tasks:      a.sched.Snapshot(),
		Triggers:   a.trig.Snapshot(),
		Bus:        a.bus.Stats(),
	}
	if a.sup != nil {
		st.Goroutines = a.sup.Snapshot()
	}
	return st
}
