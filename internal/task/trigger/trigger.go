package trigger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"pgremote/internal/task/scheduler"
	logx "pgremote/pkg/logx"
)

var (
	ErrNameRequired = errors.New("trigger name required")
	ErrLineRequired = errors.New("trigger line required")
	ErrNotCron      = errors.New("schedule is not a cron expression")
)

const (
	defaultInbox      = 16
	inboxWarnThrottle = 5 * time.Second
)

type Config struct {
	Enabled  bool
	Timezone string // IANA TZ, e.g. "Europe/Berlin"; empty means local
}

// Fire is one cron firing waiting to be dispatched.
type Fire struct {
	Name string
	Line string
	At   time.Time
}

type def struct {
	name    string
	spec    string
	line    string
	entryID cron.EntryID
	fired   uint64
	dropped uint64
}

type EntryInfo struct {
	Name    string
	Spec    string
	Line    string
	Next    time.Time
	Prev    time.Time
	Fired   uint64
	Dropped uint64
}

type Service struct {
	mu  sync.Mutex
	log logx.Logger
	cfg Config
	loc *time.Location

	c    *cron.Cron
	quit chan struct{} // closed when the running cron is stopped
	defs []*def

	inbox chan Fire

	warnMu   sync.Mutex
	lastWarn map[string]time.Time
	now      func() time.Time
}

// New returns a stopped service. inbox is the capacity of the firing queue.
func New(cfg Config, inbox int, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if inbox <= 0 {
		inbox = defaultInbox
	}
	return &Service{
		cfg:      cfg,
		log:      log,
		inbox:    make(chan Fire, inbox),
		lastWarn: map[string]time.Time{},
		now:      time.Now,
	}
}

func (s *Service) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Enabled
}

// Apply swaps the config. A timezone change restarts cron so that
// every entry is re-registered in the new location.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	oldTZ := strings.TrimSpace(s.cfg.Timezone)
	s.cfg = cfg
	if s.c == nil || oldTZ == strings.TrimSpace(cfg.Timezone) {
		return
	}
	s.c.Stop()
	s.startLocked()
}

// Add registers or replaces the entry called name. spec must be a cron
// expression as accepted by scheduler.ParseSchedule.
func (s *Service) Add(name, spec, line string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(line) == "" {
		return fmt.Errorf("%s: %w", name, ErrLineRequired)
	}
	ps, err := scheduler.ParseSchedule(spec)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if ps.Kind != scheduler.SpecCron {
		return fmt.Errorf("%s: %q: %w", name, spec, ErrNotCron)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(name)
	d := &def{name: name, spec: ps.Cron, line: line}
	s.defs = append(s.defs, d)
	if s.c == nil {
		return nil
	}
	if err := s.registerLocked(d); err != nil {
		return err
	}
	s.log.Debug("trigger registered",
		logx.String("name", name),
		logx.String("spec", d.spec),
		logx.Time("next", s.c.Entry(d.entryID).Schedule.Next(s.now().In(s.loc))),
	)
	return nil
}

// Remove drops the entry called name and reports whether it existed.
func (s *Service) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(name)
}

func (s *Service) removeLocked(name string) bool {
	for i, d := range s.defs {
		if d.name != name {
			continue
		}
		if s.c != nil && d.entryID != 0 {
			s.c.Remove(d.entryID)
		}
		s.defs = append(s.defs[:i], s.defs[i+1:]...)
		return true
	}
	return false
}

// Start begins cron triggering. It is a no-op when already running. Cron is
// stopped when ctx is done.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return
	}
	s.startLocked()
	quit := make(chan struct{})
	s.quit = quit
	go func() {
		select {
		case <-quit:
		case <-ctx.Done():
			s.mu.Lock()
			var c *cron.Cron
			if s.quit == quit {
				c = s.detachLocked()
			}
			s.mu.Unlock()
			s.wait(context.Background(), c)
		}
	}()
	s.log.Info("trigger started", logx.String("tz", s.loc.String()), logx.Int("entries", len(s.defs)))
}

func (s *Service) startLocked() {
	s.loc = s.loadLocationLocked()
	s.c = cron.New(cron.WithParser(scheduler.CronParser), cron.WithLocation(s.loc))
	for _, d := range s.defs {
		if err := s.registerLocked(d); err != nil {
			s.log.Error("trigger register failed", logx.String("name", d.name), logx.Err(err))
		}
	}
	s.c.Start()
}

// Stop halts cron and waits for running jobs or ctx, whichever comes first.
// Definitions are kept for the next Start.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.detachLocked()
	s.mu.Unlock()
	s.wait(ctx, c)
}

// Running reports whether cron is started.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c != nil
}

func (s *Service) detachLocked() *cron.Cron {
	c := s.c
	s.c = nil
	if s.quit != nil {
		close(s.quit)
		s.quit = nil
	}
	for _, d := range s.defs {
		d.entryID = 0
	}
	return c
}

func (s *Service) wait(ctx context.Context, c *cron.Cron) {
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
	s.log.Info("trigger stopped")
}

func (s *Service) registerLocked(d *def) error {
	id, err := s.c.AddJob(d.spec, cron.FuncJob(func() { s.fire(d) }))
	if err != nil {
		return fmt.Errorf("%s: %w", d.name, err)
	}
	d.entryID = id
	return nil
}

func (s *Service) loadLocationLocked() *time.Location {
	tz := strings.TrimSpace(s.cfg.Timezone)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		s.log.Warn("invalid timezone, using local", logx.String("tz", tz), logx.Err(err))
		return time.Local
	}
	return loc
}

// fire queues the entry's line without blocking the cron goroutine.
func (s *Service) fire(d *def) {
	s.mu.Lock()
	enabled := s.cfg.Enabled
	name, line := d.name, d.line
	s.mu.Unlock()
	if !enabled {
		return
	}

	select {
	case s.inbox <- Fire{Name: name, Line: line, At: s.now()}:
		s.mu.Lock()
		d.fired++
		s.mu.Unlock()
	default:
		s.mu.Lock()
		d.dropped++
		s.mu.Unlock()
		s.reportFull(name)
	}
}

// reportFull warns at most once per throttle window per entry.
func (s *Service) reportFull(name string) {
	now := s.now()
	s.warnMu.Lock()
	last := s.lastWarn[name]
	if !last.IsZero() && now.Sub(last) < inboxWarnThrottle {
		s.warnMu.Unlock()
		return
	}
	s.lastWarn[name] = now
	s.warnMu.Unlock()
	s.log.Warn("trigger inbox full, firing dropped", logx.String("name", name), logx.Int("cap", cap(s.inbox)))
}

// Drain returns the queued firings without blocking.
func (s *Service) Drain() []Fire {
	var out []Fire
	for {
		select {
		case f := <-s.inbox:
			out = append(out, f)
		default:
			return out
		}
	}
}

// Snapshot lists the entries in registration order.
func (s *Service) Snapshot() []EntryInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]EntryInfo, 0, len(s.defs))
	for _, d := range s.defs {
		info := EntryInfo{Name: d.name, Spec: d.spec, Line: d.line, Fired: d.fired, Dropped: d.dropped}
		if s.c != nil && d.entryID != 0 {
			e := s.c.Entry(d.entryID)
			info.Next, info.Prev = e.Next, e.Prev
		}
		out = append(out, info)
	}
	return out
}
