package transport

import (
	"fmt"
	"io"
	"net"
	"os"
	"time"
)

type connPort struct {
	net.Conn
	name string
}

func (p *connPort) Name() string { return p.name }

func dialTCP(addr string, timeout time.Duration) (Port, error) {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	c, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &connPort{Conn: c, name: "tcp:" + addr}, nil
}

// streamPort joins a reader and a writer. Closing it closes both when they
// implement io.Closer, except the process's standard streams.
type streamPort struct {
	io.Reader
	io.Writer
	name string
}

func (p *streamPort) Name() string { return p.name }

func (p *streamPort) Close() error {
	if c, ok := p.Reader.(io.Closer); ok && p.Reader != os.Stdin {
		_ = c.Close()
	}
	if c, ok := p.Writer.(io.Closer); ok && p.Writer != os.Stdout {
		return c.Close()
	}
	return nil
}

// Stdio reads from stdin and writes to stdout.
func Stdio() Port { return &streamPort{Reader: os.Stdin, Writer: os.Stdout, name: "stdio"} }

// Stream wraps an arbitrary reader and writer, e.g. the ends of a net.Pipe.
func Stream(name string, r io.Reader, w io.Writer) Port {
	return &streamPort{Reader: r, Writer: w, name: name}
}
