package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pgremote/internal/clock"
	"pgremote/internal/command"
)

func TestCommandTimerRepeats(t *testing.T) {
	t.Parallel()
	clk := clock.NewManual(time.Time{})
	n := 0
	ct := NewCommandTimer(clk, 100*time.Millisecond, command.Func(func() { n++ }), true)
	ct.Start()

	require.False(t, ct.Tick())
	clk.Advance(100 * time.Millisecond)
	require.True(t, ct.Tick())
	require.Equal(t, 1, n)
	require.True(t, ct.Active())
	require.Zero(t, ct.Elapsed(), "repeating timer resets after firing")

	require.False(t, ct.Tick())
	clk.Advance(100 * time.Millisecond)
	require.True(t, ct.Tick())
	require.Equal(t, 2, n)
}

func TestCommandTimerOneShotStops(t *testing.T) {
	t.Parallel()
	clk := clock.NewManual(time.Time{})
	n := 0
	ct := NewCommandTimer(clk, 50*time.Millisecond, command.Func(func() { n++ }), false)
	ct.Start()
	clk.Advance(60 * time.Millisecond)

	require.True(t, ct.Tick())
	require.False(t, ct.Active())
	require.True(t, ct.Expired(), "expiry is sticky after stop")

	clk.Advance(time.Second)
	for i := 0; i < 3; i++ {
		require.False(t, ct.Tick(), "stopped timer is not serviced")
	}
	require.Equal(t, 1, n)

	ct.Start()
	clk.Advance(50 * time.Millisecond)
	require.True(t, ct.Tick())
	require.Equal(t, 2, n)
}

func TestCommandTimerNilCommand(t *testing.T) {
	t.Parallel()
	clk := clock.NewManual(time.Time{})
	ct := NewCommandTimer(clk, 10*time.Millisecond, nil, true)
	ct.Start()
	clk.Advance(10 * time.Millisecond)
	require.True(t, ct.Tick(), "nil command still counts as a firing")
	require.Zero(t, ct.Elapsed())

	n := 0
	ct.SetCommand(command.Func(func() { n++ }))
	ct.SetRepeats(false)
	require.False(t, ct.Repeats())
	clk.Advance(10 * time.Millisecond)
	require.True(t, ct.Tick())
	require.Equal(t, 1, n)
	require.False(t, ct.Active())
}

func TestCommandTimerZeroIntervalNeverFires(t *testing.T) {
	t.Parallel()
	clk := clock.NewManual(time.Time{})
	ct := NewCommandTimer(clk, 0, command.Func(func() { t.Fatal("must not fire") }), true)
	ct.Start()
	clk.Advance(time.Hour)
	require.False(t, ct.Tick())
}
