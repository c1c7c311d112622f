package command

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsNil(t *testing.T) {
	t.Parallel()
	var f Func
	require.True(t, IsNil(nil))
	require.True(t, IsNil(f))
	require.False(t, IsNil(Nop{}))
	require.False(t, IsNil(Func(func() {})))
}

func TestExecuteSkipsNil(t *testing.T) {
	t.Parallel()
	require.False(t, Execute(nil))

	n := 0
	require.True(t, Execute(Func(func() { n++ })))
	require.Equal(t, 1, n)
}

func TestWithAndChain(t *testing.T) {
	t.Parallel()
	var got []int
	add := func(v int) { got = append(got, v) }

	c := Chain(With(add, 1), nil, With(add, 2), Func(nil), With(add, 3))
	c.Execute()
	c.Execute()
	require.Equal(t, []int{1, 2, 3, 1, 2, 3}, got)
}
