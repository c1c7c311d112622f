package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleYAML = `
logging:
  level: debug
  console: true
transport:
  kind: serial
  path: /dev/ttyUSB0
  baud: 115200
protocol:
  buffer_size: 32
  echo: true
loop:
  interval: 5ms
scheduler:
  enabled: true
  timezone: UTC
tasks:
  - name: blink
    schedule: 500ms
    line: led=1
  - name: nightly
    schedule: "0 3 * * *"
    line: ">sta"
    active: false
storage:
  driver: sqlite
  path: ./journal.db
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()
	m := NewConfigManager(writeFile(t, "pgremote.yaml", sampleYAML))
	cfg, err := m.Load()
	require.NoError(t, err)
	require.Same(t, cfg, m.Get())

	require.Equal(t, "serial", cfg.Transport.Kind)
	require.Equal(t, 115200, cfg.Transport.Baud)
	require.Equal(t, 32, cfg.Protocol.BufferSize)
	require.Equal(t, 5*time.Millisecond, cfg.Loop.LoopInterval())
	require.Len(t, cfg.Tasks, 2)
	require.True(t, cfg.Tasks[0].IsActive())
	require.True(t, cfg.Tasks[0].IsRepeating())
	require.False(t, cfg.Tasks[1].IsActive())
	require.Equal(t, "sqlite", cfg.Storage.Driver)
}

func TestDecodeStrict(t *testing.T) {
	t.Parallel()
	_, err := Decode("c.json", []byte(`{"loop":{"interval":"1ms","bogus":1}}`))
	require.ErrorContains(t, err, "bogus")

	_, err = Decode("c.json", []byte(`{"loop":{}} {"loop":{}}`))
	require.ErrorContains(t, err, "trailing data")

	_, err = Decode("c.yml", []byte("loop: [unterminated"))
	require.Error(t, err)

	cfg, err := Decode("c.json", []byte(`{"protocol":{"terminator":";"}}`))
	require.NoError(t, err)
	require.Equal(t, ";", cfg.Protocol.Terminator)
	require.Equal(t, DefaultLoopInterval, cfg.Loop.LoopInterval())
}

func TestValidate(t *testing.T) {
	t.Parallel()
	require.NoError(t, Validate(&Config{}))

	bad := &Config{
		Logging:   LoggingConfig{Level: "loud"},
		Transport: TransportConfig{Kind: "tcp"},
		Protocol:  ProtocolConfig{BufferSize: 1, FieldSeparator: "=="},
		Loop:      LoopConfig{Interval: "soon"},
		Tasks: []TaskConfig{
			{Name: "a", Schedule: "1s", Line: "png"},
			{Name: "a", Schedule: "whenever", Line: ""},
		},
		Storage: &StorageConfig{Driver: "postgres"},
		Debug:   DebugConfig{Enabled: true, Addr: "nowhere", ReadTimeout: "x"},
	}
	err := Validate(bad)
	require.ErrorIs(t, err, ErrInvalid)
	for _, want := range []string{
		"logging.level", "transport.addr", "protocol.buffer_size", "protocol.field_separator",
		"loop.interval", `duplicate "a"`, "tasks[1].line", "tasks[1].schedule", "storage.driver",
		"debug.addr", "debug.read_timeout",
	} {
		require.ErrorContains(t, err, want)
	}

	require.ErrorContains(t, Validate(&Config{Protocol: ProtocolConfig{Terminator: ",", ArgSeparator: ","}}), "must differ")
}

func TestSummarizeConfigChange(t *testing.T) {
	t.Parallel()
	off := false
	oldCfg := &Config{
		Protocol: ProtocolConfig{Echo: false},
		Tasks: []TaskConfig{
			{Name: "keep", Schedule: "1s", Line: "png"},
			{Name: "gone", Schedule: "1s", Line: "png"},
			{Name: "edit", Schedule: "1s", Line: "png"},
		},
	}
	newCfg := &Config{
		Protocol:  ProtocolConfig{Echo: true},
		Scheduler: SchedulerConfig{Enabled: true},
		Tasks: []TaskConfig{
			{Name: "keep", Schedule: "1s", Line: "png"},
			{Name: "edit", Schedule: "1s", Line: "png", Active: &off},
			{Name: "new", Schedule: "2s", Line: "sta"},
		},
	}
	changed, attrs, tasks := SummarizeConfigChange(oldCfg, newCfg)
	require.Equal(t, []string{"protocol.echo", "scheduler", "tasks"}, changed)
	require.NotEmpty(t, attrs)
	require.Equal(t, []string{"gone", "edit", "new"}, tasks)
	require.False(t, NeedsRestart(changed))

	changed, _, _ = SummarizeConfigChange(oldCfg, &Config{Protocol: ProtocolConfig{Terminator: ";"}, Tasks: oldCfg.Tasks})
	require.Equal(t, []string{"protocol.framing"}, changed)
	require.True(t, NeedsRestart(changed))

	changed, _, _ = SummarizeConfigChange(oldCfg, &Config{Debug: DebugConfig{Enabled: true}, Tasks: oldCfg.Tasks})
	require.Equal(t, []string{"debug"}, changed)
	require.False(t, NeedsRestart(changed))
}

func TestReloadPublishesOnlyChanges(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "c.json", `{"scheduler":{"enabled":false}}`)
	m := NewConfigManager(path)
	_, err := m.Load()
	require.NoError(t, err)
	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	published, err := m.Reload(context.Background())
	require.NoError(t, err)
	require.False(t, published)

	require.NoError(t, os.WriteFile(path, []byte(`{"scheduler":{"enabled":true}}`), 0o600))
	published, err = m.Reload(context.Background())
	require.NoError(t, err)
	require.True(t, published)
	require.True(t, (<-ch).Scheduler.Enabled)

	m.SetValidator(func(context.Context, *Config) error { return ErrInvalid })
	require.NoError(t, os.WriteFile(path, []byte(`{"scheduler":{"enabled":false}}`), 0o600))
	_, err = m.Reload(context.Background())
	require.ErrorIs(t, err, ErrInvalid)
	require.True(t, m.Get().Scheduler.Enabled, "rejected config is not committed")
}

func TestWatchReloadsOnWrite(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "c.json", `{"loop":{"interval":"10ms"}}`)
	m := NewConfigManager(path)
	m.debounce = 10 * time.Millisecond
	_, err := m.Load()
	require.NoError(t, err)
	ch := m.Subscribe(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Watch(ctx) }()

	var got *Config
	require.Eventually(t, func() bool {
		// Rewrite until the watcher is up and sees it.
		_ = os.WriteFile(path, []byte(`{"loop":{"interval":"20ms"}}`), 0o600)
		select {
		case got = <-ch:
			return true
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)
	require.Equal(t, 20*time.Millisecond, got.Loop.LoopInterval())
}
