package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"pgremote/internal/task/scheduler"
	logx "pgremote/pkg/logx"
)

var ErrInvalid = errors.New("invalid config")

// Validate checks cross-field constraints that the decoder cannot.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil", ErrInvalid)
	}
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if lvl := strings.TrimSpace(cfg.Logging.Level); lvl != "" && !logx.ValidLevel(lvl) {
		add("logging.level: unknown level %q", lvl)
	}
	if lvl := strings.TrimSpace(cfg.Logging.Peer.MinLevel); lvl != "" && !logx.ValidLevel(lvl) {
		add("logging.peer.min_level: unknown level %q", lvl)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Transport.Kind)) {
	case "", "stdio", "console":
	case "serial":
		if strings.TrimSpace(cfg.Transport.Path) == "" {
			add("transport.path: required for serial")
		}
	case "tcp":
		if strings.TrimSpace(cfg.Transport.Addr) == "" {
			add("transport.addr: required for tcp")
		}
	default:
		add("transport.kind: unknown kind %q", cfg.Transport.Kind)
	}
	if _, err := ParseDurationField("transport.dial_timeout", cfg.Transport.DialTimeout); err != nil {
		errs = append(errs, err)
	}

	p := cfg.Protocol
	if p.BufferSize != 0 && p.BufferSize < 2 {
		add("protocol.buffer_size: must be >= 2")
	}
	for _, sep := range []struct{ path, v string }{
		{"protocol.terminator", p.Terminator},
		{"protocol.field_separator", p.FieldSeparator},
		{"protocol.arg_separator", p.ArgSeparator},
	} {
		if len(sep.v) > 1 {
			add("%s: must be a single byte, got %q", sep.path, sep.v)
		}
	}
	if p.Terminator != "" && (p.Terminator == p.FieldSeparator || p.Terminator == p.ArgSeparator) {
		add("protocol.terminator: must differ from the separators")
	}

	if _, err := ParseDurationField("loop.interval", cfg.Loop.Interval); err != nil {
		errs = append(errs, err)
	}

	seen := map[string]bool{}
	for i, t := range cfg.Tasks {
		path := fmt.Sprintf("tasks[%d]", i)
		name := strings.TrimSpace(t.Name)
		if name == "" {
			add("%s.name: required", path)
		} else if seen[name] {
			add("%s.name: duplicate %q", path, name)
		}
		seen[name] = true
		if strings.TrimSpace(t.Line) == "" {
			add("%s.line: required", path)
		}
		if _, err := scheduler.ParseSchedule(t.Schedule); err != nil {
			add("%s.schedule: %v", path, err)
		}
	}

	if st := cfg.Storage; st != nil {
		switch strings.ToLower(strings.TrimSpace(st.Driver)) {
		case "", "file", "sqlite":
		default:
			add("storage.driver: unknown driver %q", st.Driver)
		}
		if _, err := ParseDurationField("storage.busy_timeout", st.BusyTimeout); err != nil {
			errs = append(errs, err)
		}
	}

	d := cfg.Debug
	for _, f := range []struct{ path, v string }{
		{"debug.read_timeout", d.ReadTimeout},
		{"debug.idle_timeout", d.IdleTimeout},
	} {
		if _, err := ParseDurationField(f.path, f.v); err != nil {
			errs = append(errs, err)
		}
	}
	if d.MutexProfileFraction < 0 || d.BlockProfileRate < 0 {
		add("debug: profile rates must be >= 0")
	}
	if addr := strings.TrimSpace(d.Addr); d.Enabled && addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			add("debug.addr: invalid %q (expected host:port)", addr)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}
