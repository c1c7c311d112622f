package remote

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type pin uint8

func TestSlotConversions(t *testing.T) {
	t.Parallel()

	s, err := newSlot[string]()
	require.NoError(t, err)
	require.NoError(t, s.set(" spaced "))
	require.Equal(t, " spaced ", s.val)

	c, err := newSlot[byte]()
	require.NoError(t, err)
	require.NoError(t, c.set("a"))
	require.Equal(t, byte('a'), c.val)
	require.NoError(t, c.set("7"))
	require.Equal(t, byte(7), c.val)
	require.NoError(t, c.set("200"))
	require.Equal(t, byte(200), c.val)
	require.Error(t, c.set("300"))

	p, err := newSlot[pin]()
	require.NoError(t, err)
	require.NoError(t, p.set("13"))
	require.Equal(t, pin(13), p.val)

	i, err := newSlot[int16]()
	require.NoError(t, err)
	require.NoError(t, i.set("-42"))
	require.Equal(t, int16(-42), i.val)
	require.Error(t, i.set("0x10"), "decimal only")
	require.Error(t, i.set("40000"))
	require.Error(t, i.set(""))

	u, err := newSlot[uint32]()
	require.NoError(t, err)
	require.Error(t, u.set("-1"))
	require.Error(t, u.set("0b11"))

	f, err := newSlot[float64]()
	require.NoError(t, err)
	require.NoError(t, f.set("2.5"))
	require.Equal(t, 2.5, f.val)
	require.Error(t, f.set("abc"))
}

func TestZeroPaddedDecimal(t *testing.T) {
	t.Parallel()

	i, err := newSlot[int]()
	require.NoError(t, err)
	require.NoError(t, i.set("010"))
	require.Equal(t, 10, i.val)
	require.NoError(t, i.set("08"))
	require.Equal(t, 8, i.val)
	require.NoError(t, i.set("-007"))
	require.Equal(t, -7, i.val)

	u, err := newSlot[uint16]()
	require.NoError(t, err)
	require.NoError(t, u.set("0099"))
	require.Equal(t, uint16(99), u.val)

	c, err := newSlot[byte]()
	require.NoError(t, err)
	require.NoError(t, c.set("09"))
	require.Equal(t, byte(9), c.val)
}

func TestBoolConversion(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want bool
		err  bool
	}{
		{in: "1", want: true},
		{in: "0", want: false},
		{in: "2", want: true},
		{in: "010", want: true},
		{in: "0x1", err: true},
		{in: "true", want: true},
		{in: "OFF", want: false},
		{in: "maybe", err: true},
		{in: "", err: true},
	}
	for _, tt := range tests {
		s, err := newSlot[bool]()
		require.NoError(t, err)
		err = s.set(tt.in)
		if tt.err {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, s.val, tt.in)
	}
}

func TestUnsupportedType(t *testing.T) {
	t.Parallel()
	_, err := newSlot[[]int]()
	require.True(t, errors.Is(err, ErrUnsupportedType))

	_, err = Handle1("bad", func(struct{}) {})
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Handle2("bad", func(int, map[string]int) {})
	require.ErrorIs(t, err, ErrUnsupportedType)
}
