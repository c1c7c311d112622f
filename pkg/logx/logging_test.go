package logx

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestZeroLoggerIsNoop(t *testing.T) {
	t.Parallel()
	var l Logger
	require.True(t, l.IsZero())
	l.Info("ignored", String("k", "v"))
	require.False(t, Nop().IsZero())
}

func TestFormatPeerLine(t *testing.T) {
	t.Parallel()
	line := formatPeerLine("log", []byte(`{"level":"warn","message":"bad, line\nhere","comp":"remote","time":"x"}`))
	require.Equal(t, "log=warn,bad  line here comp:remote\n", line)
	require.Equal(t, 1, strings.Count(line, "\n"))
	require.Equal(t, 1, strings.Count(line, "="))

	raw := formatPeerLine("dbg", []byte("plain text"))
	require.Equal(t, "dbg=plain text\n", raw)
}

func TestPeerSinkForwardsAboveMinLevel(t *testing.T) {
	peer := &syncBuffer{}
	svc, log := New(Config{
		Level: "debug",
		Peer:  PeerConfig{Enabled: true, MinLevel: "warn", RatePerSec: 100},
	})
	defer svc.Close()
	svc.SetPeer(peer)

	log.Info("quiet")
	log.Warn("loud", String("comp", "test"))

	require.Eventually(t, func() bool {
		return strings.Contains(peer.String(), "log=warn,loud comp:test")
	}, time.Second, 5*time.Millisecond)
	require.NotContains(t, peer.String(), "quiet")
}

func TestSetLevel(t *testing.T) {
	svc, log := New(Config{Level: "info"})
	defer svc.Close()
	require.False(t, log.Enabled(LevelDebug))
	svc.SetLevel("debug")
	require.True(t, log.Enabled(LevelDebug))
	require.Equal(t, "debug", svc.Level())
	require.True(t, ValidLevel("Warning"))
	require.False(t, ValidLevel("loud"))
}
