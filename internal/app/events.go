package app

import (
	"context"
	"time"

	"pgremote/internal/eventbus"
	"pgremote/internal/storage"
	"pgremote/internal/task/scheduler"
	logx "pgremote/pkg/logx"
)

const (
	EventDispatch = "remote.dispatch"
	EventTrigger  = "trigger.fired"

	journalWriteTimeout = time.Second
)

// DispatchEvent is published for every line the control handled.
type DispatchEvent struct {
	Key       string `json:"key,omitempty"`
	Line      string `json:"line"`
	Status    string `json:"status"`
	Truncated bool   `json:"truncated,omitempty"`
	Err       string `json:"err,omitempty"`
}

// TriggerEvent is published when a cron firing is taken off the inbox.
type TriggerEvent struct {
	Name string `json:"name"`
	Line string `json:"line"`
}

// toRecord maps a bus event to a journal record. ok is false for event
// types that are not journaled.
func toRecord(e eventbus.Event) (storage.Record, bool) {
	r := storage.Record{At: e.Time}
	switch d := e.Data.(type) {
	case DispatchEvent:
		r.Kind, r.Key, r.Line, r.Status, r.Detail = storage.KindDispatch, d.Key, d.Line, d.Status, d.Err
		if d.Truncated && r.Detail == "" {
			r.Detail = "truncated"
		}
	case scheduler.TaskEvent:
		r.Kind, r.Key = storage.KindTaskFired, d.Name
	case TriggerEvent:
		r.Kind, r.Key, r.Line = storage.KindTrigger, d.Name, d.Line
	default:
		return storage.Record{}, false
	}
	return r, true
}

// recordLoop appends bus events to the journal until ctx is done.
func (a *App) recordLoop(ctx context.Context, events <-chan eventbus.Event) {
	log := a.log.With(logx.String("comp", "journal"))
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			r, ok := toRecord(e)
			if !ok {
				continue
			}
			wctx, cancel := context.WithTimeout(ctx, journalWriteTimeout)
			err := a.store.Append(wctx, r)
			cancel()
			if err != nil {
				log.Warn("journal append failed", logx.String("kind", r.Kind), logx.Err(err))
			}
		}
	}
}
