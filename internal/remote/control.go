package remote

import (
	"errors"
	"fmt"
	"io"
	"strings"

	logx "pgremote/pkg/logx"
)

var (
	ErrNoWriter          = errors.New("no writer attached")
	ErrDuplicateCommand  = errors.New("duplicate command")
	ErrArgumentsDisabled = errors.New("command takes arguments but argument parsing is disabled")
	ErrInvalidKey        = errors.New("command key contains a separator")
)

const (
	DefaultBufferSize     = 64
	DefaultTerminator     = '\n'
	DefaultFieldSeparator = '='
	DefaultArgSeparator   = ','
)

// Config controls framing and parsing. Zero values select the defaults.
type Config struct {
	BufferSize     int
	Terminator     byte
	FieldSeparator byte
	ArgSeparator   byte
	Echo           bool
}

func (c Config) withDefaults() Config {
	if c.BufferSize <= 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.Terminator == 0 {
		c.Terminator = DefaultTerminator
	}
	if c.FieldSeparator == 0 {
		c.FieldSeparator = DefaultFieldSeparator
	}
	if c.ArgSeparator == 0 {
		c.ArgSeparator = DefaultArgSeparator
	}
	return c
}

// Source yields bytes that have already arrived. Drain must not block; it
// returns 0 when nothing is pending.
type Source interface {
	Drain(p []byte) int
}

// Control owns a line buffer and a fixed command table.
//
// Control is not safe for concurrent use: Feed, Poll and Dispatch are meant to
// be called from a single poll loop.
type Control struct {
	cfg     Config
	buf     *LineBuffer
	cmds    []Command
	args    bool
	echo    bool
	scratch []byte

	out      io.Writer
	log      logx.Logger
	observer func(Result)
}

// New builds a Control that parses arguments.
// Commands are matched in the order given; the table cannot change later.
// Keys that prefix one another are resolved by that order, but an exact
// duplicate key can never be reached and is rejected with ErrDuplicateCommand.
func New(cfg Config, cmds ...Command) (*Control, error) {
	return newControl(cfg, true, cmds)
}

// NewSerial builds a Control for commands without arguments. Lines are
// matched by key only and nothing after the key is parsed.
func NewSerial(cfg Config, cmds ...Command) (*Control, error) {
	return newControl(cfg, false, cmds)
}

func newControl(cfg Config, args bool, cmds []Command) (*Control, error) {
	cfg = cfg.withDefaults()
	table := make([]Command, 0, len(cmds))
	seen := make(map[string]struct{}, len(cmds))
	for i, c := range cmds {
		if c == nil {
			return nil, fmt.Errorf("command %d: %w", i, ErrNilHandler)
		}
		key := c.Key()
		if key == "" {
			return nil, fmt.Errorf("command %d: %w", i, ErrKeyRequired)
		}
		if strings.IndexByte(key, cfg.Terminator) >= 0 || strings.IndexByte(key, cfg.FieldSeparator) >= 0 {
			return nil, fmt.Errorf("%q: %w", key, ErrInvalidKey)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%q: %w", key, ErrDuplicateCommand)
		}
		if !args && c.Arity() > 0 {
			return nil, fmt.Errorf("%q: %w", key, ErrArgumentsDisabled)
		}
		seen[key] = struct{}{}
		table = append(table, c)
	}
	return &Control{
		cfg:     cfg,
		buf:     NewLineBuffer(cfg.BufferSize, cfg.Terminator),
		cmds:    table,
		args:    args,
		echo:    cfg.Echo,
		scratch: make([]byte, cfg.BufferSize),
		log:     logx.Nop(),
	}, nil
}

// SetWriter attaches the writer used for echo and replies.
func (c *Control) SetWriter(w io.Writer) { c.out = w }

func (c *Control) SetLogger(log logx.Logger) {
	if log.IsZero() {
		log = logx.Nop()
	}
	c.log = log
}

// SetObserver installs a callback invoked with every Result, after the handler.
func (c *Control) SetObserver(fn func(Result)) { c.observer = fn }

func (c *Control) SetEcho(v bool) { c.echo = v }
func (c *Control) Echo() bool     { return c.echo }

func (c *Control) Config() Config { return c.cfg }

// Buffered returns the number of bytes waiting for a terminator.
func (c *Control) Buffered() int { return c.buf.Len() }

// Pending returns the partial line still waiting for its terminator.
func (c *Control) Pending() string { return string(c.buf.Pending()) }

// Keys returns the registered keys in match order.
func (c *Control) Keys() []string {
	out := make([]string, len(c.cmds))
	for i, cmd := range c.cmds {
		out[i] = cmd.Key()
	}
	return out
}

// Feed pushes bytes through the line buffer and dispatches every line that
// completes. Incomplete input stays buffered for the next call.
func (c *Control) Feed(p []byte) []Result {
	var out []Result
	for _, b := range p {
		line, truncated, ready := c.buf.Put(b)
		if !ready {
			continue
		}
		out = append(out, c.dispatch(string(line), truncated, true))
	}
	return out
}

// Poll drains everything src has pending and feeds it.
func (c *Control) Poll(src Source) []Result {
	var out []Result
	for {
		n := src.Drain(c.scratch)
		if n <= 0 {
			return out
		}
		out = append(out, c.Feed(c.scratch[:n])...)
	}
}

// Dispatch matches and runs a complete line that did not come through the
// buffer (loopback callers such as scheduled tasks). It is never echoed: the
// peer did not send it.
func (c *Control) Dispatch(line string) Result {
	return c.dispatch(line, false, false)
}

// dispatch runs line. fromPeer lines are echoed when echo is on.
func (c *Control) dispatch(line string, truncated, fromPeer bool) Result {
	line = strings.TrimSuffix(line, "\r")
	res := Result{Line: line, Truncated: truncated}

	cmd := c.match(line)
	if cmd == nil {
		res.Status = NoMatch
		if truncated {
			res.Status = Truncated
		}
		c.log.Debug("line dropped", logx.String("line", line), logx.String("status", res.Status.String()))
		c.notify(res)
		return res
	}
	res.Key = cmd.Key()

	var args []string
	if c.args && cmd.Arity() > 0 {
		args = c.split(line[len(res.Key):])
	}
	if err := cmd.invoke(args); err != nil {
		res.Err = err
		res.Status = InvalidArgument
		if errors.Is(err, ErrArgumentCount) {
			res.Status = ArgumentCountMismatch
		}
		c.log.Warn("command rejected", logx.String("key", res.Key), logx.String("line", line), logx.Err(err))
		c.notify(res)
		return res
	}

	res.Status = Dispatched
	c.log.Debug("command dispatched", logx.String("key", res.Key), logx.Bool("truncated", truncated))
	if c.echo && fromPeer {
		if err := c.write(line); err != nil {
			c.log.Debug("echo failed", logx.Err(err))
		}
	}
	c.notify(res)
	return res
}

// match returns the first command whose key prefixes line.
func (c *Control) match(line string) Command {
	for _, cmd := range c.cmds {
		if strings.HasPrefix(line, cmd.Key()) {
			return cmd
		}
	}
	return nil
}

// split returns the argument tokens after the field separator in rest.
func (c *Control) split(rest string) []string {
	i := strings.IndexByte(rest, c.cfg.FieldSeparator)
	if i < 0 {
		return nil
	}
	rest = rest[i+1:]
	if rest == "" {
		return nil
	}
	return strings.Split(rest, string(c.cfg.ArgSeparator))
}

func (c *Control) notify(r Result) {
	if c.observer != nil {
		c.observer(r)
	}
}

// Reply writes "key=value" and the terminator.
func (c *Control) Reply(key string, value any) error {
	return c.write(fmt.Sprintf("%s%c%v", key, c.cfg.FieldSeparator, value))
}

// Send writes a raw line followed by the terminator.
func (c *Control) Send(line string) error {
	return c.write(line)
}

func (c *Control) write(line string) error {
	if c.out == nil {
		return ErrNoWriter
	}
	b := make([]byte, 0, len(line)+1)
	b = append(b, line...)
	b = append(b, c.cfg.Terminator)
	_, err := c.out.Write(b)
	return err
}
