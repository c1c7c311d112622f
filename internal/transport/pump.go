package transport

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	logx "pgremote/pkg/logx"
)

const (
	defaultQueue = 64
	readChunk    = 256
)

// Pump owns a Port. Run reads the port on its own goroutine; Drain hands the
// received bytes to a single consumer without blocking.
type Pump struct {
	port Port
	log  logx.Logger
	in   chan []byte
	rest []byte // partially drained chunk, consumer-owned

	wmu      sync.Mutex
	bytesIn  atomic.Uint64
	bytesOut atomic.Uint64
}

// NewPump buffers up to queue read chunks before Run blocks on the consumer.
func NewPump(port Port, queue int, log logx.Logger) *Pump {
	if queue <= 0 {
		queue = defaultQueue
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Pump{port: port, log: log, in: make(chan []byte, queue)}
}

func (p *Pump) Port() Port { return p.port }

// Run reads until the port fails, reaches EOF, or ctx is done. The port is
// closed when Run returns. EOF is a clean exit.
func (p *Pump) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = p.port.Close()
		case <-stop:
		}
	}()
	defer p.port.Close()

	buf := make([]byte, readChunk)
	for {
		n, err := p.port.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			p.bytesIn.Add(uint64(n))
			select {
			case p.in <- chunk:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, io.EOF) {
			p.log.Info("peer closed", logx.String("port", p.port.Name()))
			return nil
		}
		return err
	}
}

// Drain copies queued bytes into b and returns the count. It never blocks.
func (p *Pump) Drain(b []byte) int {
	n := 0
	for n < len(b) {
		if len(p.rest) == 0 {
			select {
			case chunk := <-p.in:
				p.rest = chunk
			default:
				return n
			}
		}
		c := copy(b[n:], p.rest)
		p.rest = p.rest[c:]
		n += c
	}
	return n
}

// Write sends b to the peer. Safe for concurrent use.
func (p *Pump) Write(b []byte) (int, error) {
	p.wmu.Lock()
	defer p.wmu.Unlock()
	n, err := p.port.Write(b)
	p.bytesOut.Add(uint64(n))
	return n, err
}

type Stats struct {
	BytesIn  uint64
	BytesOut uint64
	Queued   int
}

func (p *Pump) Stats() Stats {
	return Stats{BytesIn: p.bytesIn.Load(), BytesOut: p.bytesOut.Load(), Queued: len(p.in)}
}
