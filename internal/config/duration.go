package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultLoopInterval = 10 * time.Millisecond
	DefaultBusyTimeout  = 5 * time.Second
)

// ParseDurationField parses a Go duration string. Empty means zero.
func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// ParseDurationOrDefault is ParseDurationField with def for empty or zero values.
func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}

// LoopInterval returns the poll cadence, falling back to the default.
func (c LoopConfig) LoopInterval() time.Duration {
	d, err := ParseDurationOrDefault("loop.interval", c.Interval, DefaultLoopInterval)
	if err != nil {
		return DefaultLoopInterval
	}
	return d
}
