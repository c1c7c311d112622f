package remote

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type call struct {
	key  string
	args []any
}

type recorder struct{ calls []call }

func (r *recorder) add(key string, args ...any) {
	r.calls = append(r.calls, call{key: key, args: args})
}

func TestDispatchNoArgs(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	c, err := New(Config{}, Must(Handle0("rst", func() { rec.add("rst") })))
	require.NoError(t, err)

	res := c.Feed([]byte("rst\n"))
	require.Len(t, res, 1)
	require.Equal(t, Dispatched, res[0].Status)
	require.Equal(t, "rst", res[0].Key)
	require.Equal(t, []call{{key: "rst"}}, rec.calls)
	require.Zero(t, c.Buffered(), "buffer is empty after dispatch")
}

func TestDispatchTypedArguments(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	c, err := New(Config{},
		Must(Handle2("key", func(a int, b bool) { rec.add("key", a, b) })),
		Must(Handle2("wrp", func(p pin, v uint8) { rec.add("wrp", p, v) })),
	)
	require.NoError(t, err)

	res := c.Feed([]byte("key=42,1\nwrp=13,1\n"))
	require.Len(t, res, 2)
	for _, r := range res {
		require.Equal(t, Dispatched, r.Status, r.Line)
	}
	require.Equal(t, []call{
		{key: "key", args: []any{42, true}},
		{key: "wrp", args: []any{pin(13), uint8(1)}},
	}, rec.calls)
}

func TestDispatchFirstMatchWins(t *testing.T) {
	t.Parallel()
	build := func(rec *recorder, shortFirst bool) *Control {
		short := Must(Handle0("rdp", func() { rec.add("rdp") }))
		long := Must(Handle0("rdpX", func() { rec.add("rdpX") }))
		cmds := []Command{short, long}
		if !shortFirst {
			cmds = []Command{long, short}
		}
		c, err := New(Config{}, cmds...)
		require.NoError(t, err)
		return c
	}

	t.Run("short registered first", func(t *testing.T) {
		rec := &recorder{}
		c := build(rec, true)
		c.Feed([]byte("rdp\nrdpX\n"))
		require.Equal(t, []call{{key: "rdp"}, {key: "rdp"}}, rec.calls, "the shorter key shadows the longer one")
	})

	t.Run("long registered first", func(t *testing.T) {
		rec := &recorder{}
		c := build(rec, false)
		c.Feed([]byte("rdp\nrdpX\n"))
		require.Equal(t, []call{{key: "rdp"}, {key: "rdpX"}}, rec.calls)
	})
}

func TestDispatchNoMatch(t *testing.T) {
	t.Parallel()
	c, err := New(Config{}, Must(Handle0("rst", func() { t.Fatal("must not run") })))
	require.NoError(t, err)

	res := c.Feed([]byte("xyz\n\n"))
	require.Len(t, res, 2)
	require.Equal(t, NoMatch, res[0].Status)
	require.Equal(t, "xyz", res[0].Line)
	require.Empty(t, res[0].Key)
	require.Equal(t, NoMatch, res[1].Status, "empty line matches nothing")
}

func TestBufferOverflowForcesDispatch(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	c, err := New(Config{BufferSize: 8}, Must(Handle0("rdp", func() { rec.add("rdp") })))
	require.NoError(t, err)

	res := c.Feed([]byte("garbage-garbage"))
	require.Len(t, res, 1)
	require.Equal(t, Truncated, res[0].Status)
	require.True(t, res[0].Truncated)
	require.Equal(t, "garbage", res[0].Line)
	require.Equal(t, 7, c.Buffered(), "bytes after the forced line start a new one")
	require.Empty(t, rec.calls)

	// A matching prefix still dispatches even when the line was cut.
	c2, err := New(Config{BufferSize: 4}, Must(Handle0("rdp", func() { rec.add("rdp") })))
	require.NoError(t, err)
	res = c2.Feed([]byte("rdpXYZ"))
	require.Len(t, res, 1)
	require.Equal(t, Dispatched, res[0].Status)
	require.True(t, res[0].Truncated)
	require.Equal(t, []call{{key: "rdp"}}, rec.calls)
}

func TestArgumentCountMismatchSkipsHandler(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	c, err := New(Config{}, Must(Handle2("set", func(a, b int) { rec.add("set", a, b) })))
	require.NoError(t, err)

	for _, line := range []string{"set", "set=", "set=1", "set=1,2,3"} {
		r := c.Dispatch(line)
		require.Equal(t, ArgumentCountMismatch, r.Status, line)
		require.ErrorIs(t, r.Err, ErrArgumentCount, line)
	}
	require.Empty(t, rec.calls)

	r := c.Dispatch("set=1,x")
	require.Equal(t, InvalidArgument, r.Status)
	require.ErrorIs(t, r.Err, ErrInvalidArgument)
	require.Empty(t, rec.calls)

	r = c.Dispatch("set=1,2")
	require.True(t, r.OK())
	require.Equal(t, []call{{key: "set", args: []any{1, 2}}}, rec.calls)
}

func TestHandlerArities(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	c, err := New(Config{FieldSeparator: ':', ArgSeparator: ' '},
		Must(Handle1("one", func(s string) { rec.add("one", s) })),
		Must(Handle3("three", func(a int8, b float32, c byte) { rec.add("three", a, b, c) })),
		Must(Handle4("four", func(a, b, c, d uint) { rec.add("four", a, b, c, d) })),
	)
	require.NoError(t, err)

	require.True(t, c.Dispatch("one:hello").OK())
	require.True(t, c.Dispatch("three:-1 0.5 z").OK())
	require.True(t, c.Dispatch("four:1 2 3 4").OK())
	require.Equal(t, []call{
		{key: "one", args: []any{"hello"}},
		{key: "three", args: []any{int8(-1), float32(0.5), byte('z')}},
		{key: "four", args: []any{uint(1), uint(2), uint(3), uint(4)}},
	}, rec.calls)
}

func TestEchoAndReply(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	c, err := New(Config{Echo: true}, Must(Handle1("val", func(int) {})))
	require.NoError(t, err)
	c.SetWriter(&out)

	c.Feed([]byte("val=3\r\nnope\nval=x\n"))
	require.Equal(t, "val=3\n", out.String(), "only dispatched lines are echoed")

	c.SetEcho(false)
	require.False(t, c.Echo())
	c.Feed([]byte("val=4\n"))
	require.NoError(t, c.Reply("n", 7))
	require.NoError(t, c.Send("raw line"))
	require.Equal(t, "val=3\nn=7\nraw line\n", out.String())
}

func TestDispatchIsNotEchoed(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	n := 0
	c, err := New(Config{Echo: true}, Must(Handle0("tick", func() { n++ })))
	require.NoError(t, err)
	c.SetWriter(&out)

	require.Equal(t, Dispatched, c.Dispatch("tick").Status)
	require.Equal(t, 1, n)
	require.Empty(t, out.String(), "loopback lines are not echoed")

	c.Feed([]byte("tick\n"))
	require.Equal(t, 2, n)
	require.Equal(t, "tick\n", out.String())
}

func TestDecimalArguments(t *testing.T) {
	t.Parallel()
	var got []int
	c, err := New(Config{}, Must(Handle1("pin", func(p int) { got = append(got, p) })))
	require.NoError(t, err)

	res := c.Feed([]byte("pin=010\npin=08\npin=0x1F\n"))
	require.Len(t, res, 3)
	require.Equal(t, Dispatched, res[0].Status)
	require.Equal(t, Dispatched, res[1].Status)
	require.Equal(t, InvalidArgument, res[2].Status)
	require.Equal(t, []int{10, 8}, got)
}

func TestReplyWithoutWriter(t *testing.T) {
	t.Parallel()
	c, err := New(Config{})
	require.NoError(t, err)
	require.ErrorIs(t, c.Reply("a", 1), ErrNoWriter)
}

func TestSerialControl(t *testing.T) {
	t.Parallel()
	n := 0
	c, err := NewSerial(Config{Terminator: ';'}, Must(Handle0("go", func() { n++ })))
	require.NoError(t, err)
	res := c.Feed([]byte("go=1,2;go;"))
	require.Len(t, res, 2)
	require.Equal(t, 2, n, "arguments are not parsed in serial mode")

	_, err = NewSerial(Config{}, Must(Handle1("arg", func(int) {})))
	require.ErrorIs(t, err, ErrArgumentsDisabled)
}

func TestNewValidatesTable(t *testing.T) {
	t.Parallel()
	_, err := Handle0("", func() {})
	require.ErrorIs(t, err, ErrKeyRequired)
	_, err = Handle0("x", nil)
	require.ErrorIs(t, err, ErrNilHandler)

	a := Must(Handle0("a", func() {}))
	_, err = New(Config{}, a, Must(Handle0("a", func() {})))
	require.ErrorIs(t, err, ErrDuplicateCommand)
	_, err = New(Config{}, Must(Handle0("a=b", func() {})))
	require.ErrorIs(t, err, ErrInvalidKey)
	_, err = New(Config{}, a, nil)
	require.ErrorIs(t, err, ErrNilHandler)

	c, err := New(Config{}, a, Must(Handle0("b", func() {})))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, c.Keys())
	require.Equal(t, DefaultBufferSize, c.Config().BufferSize)
}

type chunkSource struct{ chunks []string }

func (s *chunkSource) Drain(p []byte) int {
	if len(s.chunks) == 0 {
		return 0
	}
	n := copy(p, s.chunks[0])
	if n < len(s.chunks[0]) {
		s.chunks[0] = s.chunks[0][n:]
	} else {
		s.chunks = s.chunks[1:]
	}
	return n
}

func TestPollDrainsSource(t *testing.T) {
	t.Parallel()
	var seen []Result
	c, err := New(Config{BufferSize: 16}, Must(Handle1("n", func(int) {})))
	require.NoError(t, err)
	c.SetObserver(func(r Result) { seen = append(seen, r) })

	src := &chunkSource{chunks: []string{"n=1", "\nn=", "2\n" + strings.Repeat("n", 20), "\n"}}
	res := c.Poll(src)
	require.Len(t, res, 4)
	require.Equal(t, Dispatched, res[0].Status)
	require.Equal(t, Dispatched, res[1].Status)
	require.Equal(t, ArgumentCountMismatch, res[2].Status, "forced line n...n has no arguments")
	require.True(t, res[2].Truncated)
	require.Equal(t, ArgumentCountMismatch, res[3].Status)
	require.Equal(t, res, seen)
	require.Zero(t, c.Buffered())
}
