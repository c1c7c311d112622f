package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"pgremote/internal/clock"
	"pgremote/internal/config"
	"pgremote/internal/eventbus"
	"pgremote/internal/observability/pprof"
	"pgremote/internal/remote"
	"pgremote/internal/runtime/supervisor"
	"pgremote/internal/storage"
	"pgremote/internal/task/scheduler"
	"pgremote/internal/task/trigger"
	"pgremote/internal/timer"
	"pgremote/internal/transport"
	logx "pgremote/pkg/logx"
)

const (
	triggerInbox = 32
	callQueue    = 16
)

// App wires the transport, the line protocol and the schedulers around a
// single poll loop. Everything the protocol handlers touch (Control,
// Scheduler, timers) is owned by the loop goroutine; other goroutines hand
// work to it through post.
type App struct {
	cfgm *config.ConfigManager
	cfg  *config.Config

	log     logx.Logger
	logs    *logx.Service
	bus     *eventbus.MemBus
	store   storage.Store
	session string

	clk   clock.Clock
	port  transport.Port
	pump  *transport.Pump
	src   remote.Source
	ctl   *remote.Control
	sched *scheduler.Scheduler
	trig  *trigger.Service
	sd    serviceNotifier
	debug *pprof.Service

	interval   time.Duration
	uptime     *timer.Interval
	watchdog   *timer.Interval
	dispatches *timer.Counter

	calls chan func()
	sup   *supervisor.Supervisor

	peerClosed atomic.Bool
}

type Option func(*App)

// WithClock replaces the system clock used by task timers and the watchdog.
func WithClock(c clock.Clock) Option { return func(a *App) { a.clk = c } }

// WithPort uses an already open port instead of the configured transport.
// The app takes ownership and closes it.
func WithPort(p transport.Port) Option { return func(a *App) { a.port = p } }

func withNotifier(n serviceNotifier) Option { return func(a *App) { a.sd = n } }

// NewApp loads the config file and builds the app from it. The file is
// watched for changes once the app is started.
func NewApp(cfgPath string, opts ...Option) (*App, error) {
	cfgm := config.NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	a, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	a.cfgm = cfgm
	return a, nil
}

// New builds the app from cfg. The transport is opened here, so errors such
// as a missing serial device surface before Start.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	a := &App{
		cfg:        cfg,
		session:    uuid.NewString(),
		interval:   cfg.Loop.LoopInterval(),
		dispatches: timer.NewCounter(0),
		calls:      make(chan func(), callQueue),
	}
	for _, o := range opts {
		o(a)
	}
	a.clk = clock.OrSystem(a.clk)
	if a.sd == nil {
		a.sd = sdNotifier{}
	}
	a.uptime = timer.NewInterval(a.clk, 0)
	a.uptime.Start()
	a.dispatches.Start()

	a.logs, a.log = logx.New(mapLoggingConfig(cfg.Logging))
	a.log = a.log.With(logx.String("comp", "app"))
	a.bus = eventbus.New()

	fail := func(err error) (*App, error) {
		a.closeStore()
		if a.port != nil {
			_ = a.port.Close()
		}
		_ = a.logs.Close()
		return nil, err
	}

	if sc, enabled, err := mapStorageConfig(cfg); err != nil {
		return fail(err)
	} else if enabled {
		st, err := storage.Open(sc, a.log.With(logx.String("comp", "storage")))
		if err != nil {
			return fail(fmt.Errorf("open storage: %w", err))
		}
		a.store = st
		a.log.Info("storage enabled", logx.String("driver", sc.Driver))
	}

	if a.port == nil {
		tc, err := mapTransportConfig(cfg.Transport)
		if err != nil {
			return fail(err)
		}
		port, err := transport.Open(tc)
		if err != nil {
			return fail(fmt.Errorf("open transport: %w", err))
		}
		a.port = port
	}
	a.pump = transport.NewPump(a.port, cfg.Transport.Queue, a.log.With(logx.String("comp", "transport")))
	a.src = a.pump
	a.logs.SetPeer(a.pump)

	a.sched = scheduler.New(
		scheduler.WithLogger(a.log.With(logx.String("comp", "scheduler"))),
		scheduler.WithBus(a.bus),
	)
	a.trig = trigger.New(trigger.Config{
		Enabled:  cfg.Scheduler.Enabled,
		Timezone: cfg.Scheduler.Timezone,
	}, triggerInbox, a.log.With(logx.String("comp", "trigger")))

	a.debug = pprof.New(mapDebugConfig(cfg.Debug), a.status, a.log.With(logx.String("comp", "pprof")))

	ctl, err := a.newControl(cfg.Protocol)
	if err != nil {
		return fail(err)
	}
	a.ctl = ctl

	tasks, err := a.buildTasks(cfg.Tasks)
	if err != nil {
		return fail(err)
	}
	a.sched.SetTasks(tasks)
	return a, nil
}

func (a *App) newControl(pc config.ProtocolConfig) (*remote.Control, error) {
	rc := mapProtocolConfig(pc)
	var (
		ctl *remote.Control
		err error
	)
	if pc.Serial {
		ctl, err = remote.NewSerial(rc, a.builtins(false)...)
	} else {
		ctl, err = remote.New(rc, a.builtins(true)...)
	}
	if err != nil {
		return nil, fmt.Errorf("command table: %w", err)
	}
	ctl.SetWriter(a.pump)
	ctl.SetLogger(a.log.With(logx.String("comp", "remote")))
	ctl.SetObserver(a.observe)
	return ctl, nil
}

// Done is closed when the app context is cancelled (fatal error, peer gone or Stop).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

// Reason explains why Done was closed, for logging by the caller.
func (a *App) Reason() StopReason {
	switch {
	case a.Err() != nil:
		return StopFatalError
	case a.peerClosed.Load():
		return StopPeerClosed
	default:
		return StopSignal
	}
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx,
		supervisor.WithLogger(a.log.With(logx.String("comp", "supervisor"))),
		supervisor.WithCancelOnError(true),
	)
	c := a.sup.Context()

	a.uptime.Start()
	if a.cfg.Scheduler.Enabled {
		a.sched.Start()
	}
	a.trig.Start(c)
	a.startWatchdog()

	a.sup.Go("transport.pump", func(c context.Context) error {
		err := a.pump.Run(c)
		if err == nil && c.Err() == nil {
			a.peerClosed.Store(true)
			a.sup.Cancel()
		}
		return err
	})
	if a.store != nil {
		events, unsub := a.bus.Subscribe(256, EventDispatch, EventTrigger, scheduler.EventTaskFired)
		a.sup.Go0("journal", func(c context.Context) {
			defer unsub()
			a.recordLoop(c, events)
		})
	}
	if a.cfgm != nil {
		a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
		sub := a.cfgm.Subscribe(4)
		a.sup.Go0("config.reload", func(c context.Context) {
			defer a.cfgm.Unsubscribe(sub)
			a.reloadLoop(c, sub)
		})
		a.sup.Go("config.watch", a.cfgm.Watch)
	}
	a.sup.Go0("loop", a.run)
	a.debug.Start(c)

	if _, err := a.sd.Notify(sdReady); err != nil {
		a.log.Debug("sd_notify failed", logx.Err(err))
	}
	a.log.Info("app started",
		logx.String("session", a.session),
		logx.String("port", a.port.Name()),
		logx.Duration("interval", a.interval),
		logx.Int("tasks", len(a.sched.Tasks())),
	)
	return nil
}

// startWatchdog pets the service manager at half its watchdog timeout.
func (a *App) startWatchdog() {
	if !a.cfg.Loop.Watchdog {
		return
	}
	wd := a.sd.WatchdogInterval()
	if wd <= 0 {
		a.log.Debug("watchdog requested but not enabled by the service manager")
		return
	}
	a.watchdog = timer.NewInterval(a.clk, wd/2)
	a.watchdog.Start()
}

// run is the poll loop.
func (a *App) run(ctx context.Context) {
	t := time.NewTicker(a.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.step()
		}
	}
}

// step is one pass of the poll loop.
func (a *App) step() {
	for drained := false; !drained; {
		select {
		case fn := <-a.calls:
			fn()
		default:
			drained = true
		}
	}

	a.ctl.Poll(a.src)

	for _, f := range a.trig.Drain() {
		a.bus.Publish(eventbus.Event{Type: EventTrigger, Data: TriggerEvent{Name: f.Name, Line: f.Line}})
		a.runLine(f.Line)
	}

	a.sched.Tick()

	if a.watchdog != nil && a.watchdog.Expired() {
		if _, err := a.sd.Notify(sdWatchdog); err != nil {
			a.log.Debug("watchdog notify failed", logx.Err(err))
		}
		a.watchdog.Reset()
	}
}

// post runs fn on the loop goroutine. It blocks while the queue is full.
func (a *App) post(ctx context.Context, fn func()) bool {
	select {
	case a.calls <- fn:
		return true
	case <-ctx.Done():
		return false
	}
}

// runLine dispatches a task or trigger line. A leading '>' sends the rest to
// the peer unchanged.
func (a *App) runLine(line string) {
	if raw, ok := strings.CutPrefix(line, ">"); ok {
		if err := a.ctl.Send(raw); err != nil {
			a.log.Warn("send failed", logx.String("line", raw), logx.Err(err))
		}
		return
	}
	a.ctl.Dispatch(line)
}

func (a *App) observe(r remote.Result) {
	if r.OK() {
		a.dispatches.Inc()
	}
	ev := DispatchEvent{Key: r.Key, Line: r.Line, Status: r.Status.String(), Truncated: r.Truncated}
	if r.Err != nil {
		ev.Err = r.Err.Error()
	}
	a.bus.Publish(eventbus.Event{Type: EventDispatch, Data: ev})
}

// Stop shuts the app down. The loop is stopped before the scheduler so that
// nothing ticks concurrently with shutdown.
func (a *App) Stop(ctx context.Context, reason StopReason) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping", logx.String("reason", string(reason)))
	if _, err := a.sd.Notify(sdStopping + "\nSTATUS=stopping: " + string(reason)); err != nil {
		a.log.Debug("sd_notify failed", logx.Err(err))
	}

	waitCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	err := a.sup.Stop(waitCtx)
	if errors.Is(err, context.DeadlineExceeded) {
		a.log.Warn("goroutines still running after stop deadline", logx.Any("goroutines", a.sup.Snapshot()))
	}

	a.debug.Stop(waitCtx)
	a.trig.Stop(waitCtx)
	a.sched.Stop()
	a.closeStore()

	ts := a.pump.Stats()
	a.log.Info("stopped",
		logx.Int64("dispatches", a.dispatches.Count()),
		logx.Uint64("bytes_in", ts.BytesIn),
		logx.Uint64("bytes_out", ts.BytesOut),
	)
	a.logs.SetPeer(nil)
	_ = a.logs.Close()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) closeStore() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("storage close failed", logx.Err(err))
	}
	a.store = nil
}
