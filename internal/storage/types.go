package storage

import (
	"errors"
	"time"
)

var (
	ErrDisabled      = errors.New("storage disabled")
	ErrClosed        = errors.New("storage closed")
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Config configures storage.
//
// Driver values:
//   - "file": JSON Lines journal next to Path
//   - "sqlite": SQLite database at Path (modernc.org/sqlite, no cgo)
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
	MaxRecords  int           // sqlite only; older rows are pruned, 0 keeps all
}

// Record kinds.
const (
	KindDispatch  = "dispatch"
	KindTaskFired = "task.fired"
	KindTrigger   = "trigger"
)

// Record is one journal line. Keep it compact and schema-stable.
type Record struct {
	ID     string    `json:"id"`
	At     time.Time `json:"at"`
	Kind   string    `json:"kind"`
	Key    string    `json:"key,omitempty"`
	Line   string    `json:"line,omitempty"`
	Status string    `json:"status,omitempty"`
	Detail string    `json:"detail,omitempty"`
}
