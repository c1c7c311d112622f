package transport

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var (
	ErrUnknownKind  = errors.New("unknown transport kind")
	ErrPathRequired = errors.New("serial path required")
	ErrAddrRequired = errors.New("tcp addr required")
	ErrUnsupported  = errors.New("transport not supported on this platform")
)

const (
	KindSerial  = "serial"
	KindTCP     = "tcp"
	KindStdio   = "stdio"
	KindConsole = "console"

	DefaultBaud        = 9600
	DefaultDialTimeout = 5 * time.Second
)

// Port is an open connection to the peer. Read may block; Close must unblock it.
type Port interface {
	io.ReadWriteCloser
	Name() string
}

type Config struct {
	Kind        string
	Path        string // serial device, e.g. /dev/ttyUSB0
	Baud        int
	Addr        string // tcp host:port
	DialTimeout time.Duration
	Prompt      string // console prompt
}

// Open connects the port described by cfg.
func Open(cfg Config) (Port, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case KindSerial:
		if strings.TrimSpace(cfg.Path) == "" {
			return nil, ErrPathRequired
		}
		baud := cfg.Baud
		if baud <= 0 {
			baud = DefaultBaud
		}
		return openSerial(cfg.Path, baud)
	case KindTCP:
		if strings.TrimSpace(cfg.Addr) == "" {
			return nil, ErrAddrRequired
		}
		return dialTCP(cfg.Addr, cfg.DialTimeout)
	case KindStdio, "":
		return Stdio(), nil
	case KindConsole:
		return openConsole(cfg.Prompt)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}
