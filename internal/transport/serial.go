//go:build !windows

package transport

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/pkg/term"
)

// serialReadTimeout bounds each Read so Close is observed promptly.
const serialReadTimeout = 100 * time.Millisecond

type serialPort struct {
	t      *term.Term
	path   string
	closed atomic.Bool
}

func openSerial(path string, baud int) (Port, error) {
	t, err := term.Open(path, term.Speed(baud), term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", path, err)
	}
	if err := t.SetReadTimeout(serialReadTimeout); err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("serial %s: read timeout: %w", path, err)
	}
	return &serialPort{t: t, path: path}, nil
}

func (p *serialPort) Name() string { return "serial:" + p.path }

// Read retries the empty reads produced by the read timeout until data
// arrives or the port is closed.
func (p *serialPort) Read(b []byte) (int, error) {
	for {
		if p.closed.Load() {
			return 0, io.EOF
		}
		n, err := p.t.Read(b)
		if n > 0 {
			return n, nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}
	}
}

func (p *serialPort) Write(b []byte) (int, error) { return p.t.Write(b) }

func (p *serialPort) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.t.Close()
}
