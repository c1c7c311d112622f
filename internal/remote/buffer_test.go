package remote

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineBufferTerminator(t *testing.T) {
	t.Parallel()
	lb := NewLineBuffer(16, '\n')
	for _, b := range []byte("rst") {
		_, _, ready := lb.Put(b)
		require.False(t, ready)
	}
	require.Equal(t, 3, lb.Len())
	require.Equal(t, []byte("rst"), lb.Pending())

	line, truncated, ready := lb.Put('\n')
	require.True(t, ready)
	require.False(t, truncated)
	require.Equal(t, "rst", string(line))
	require.Zero(t, lb.Len(), "cursor resets after a line")
	require.Zero(t, lb.buf[3], "terminator slot is NUL")
}

func TestLineBufferFullForcesLine(t *testing.T) {
	t.Parallel()
	const n = 8
	lb := NewLineBuffer(n, '\n')
	input := []byte("abcdefgh")
	var (
		got       []byte
		truncated bool
		readyAt   = -1
	)
	for i, b := range input {
		line, tr, ready := lb.Put(b)
		if ready {
			got = append([]byte(nil), line...)
			truncated = tr
			readyAt = i
		}
	}
	require.Equal(t, n-1, readyAt, "dispatch happens on the Nth byte")
	require.True(t, truncated)
	require.Equal(t, "abcdefg", string(got), "last byte is overwritten by NUL")
	require.Zero(t, lb.buf[n-1])
	require.Zero(t, lb.Len())
}

func TestLineBufferTerminatorInLastSlot(t *testing.T) {
	t.Parallel()
	lb := NewLineBuffer(4, '\n')
	var line []byte
	var truncated, ready bool
	for _, b := range []byte("abc\n") {
		line, truncated, ready = lb.Put(b)
	}
	require.True(t, ready)
	require.False(t, truncated, "a terminator in the last slot is a normal line")
	require.Equal(t, "abc", string(line))
}

func TestLineBufferMinimumSize(t *testing.T) {
	t.Parallel()
	lb := NewLineBuffer(0, '\n')
	require.Equal(t, 2, lb.Cap())
	_, _, ready := lb.Put('x')
	require.False(t, ready)
	line, truncated, ready := lb.Put('y')
	require.True(t, ready)
	require.True(t, truncated)
	require.Equal(t, "x", string(line))

	lb.Put('z')
	lb.Reset()
	require.Zero(t, lb.Len())
}
