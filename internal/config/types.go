package config

// Config is the daemon configuration. JSON or YAML; unknown keys are rejected.
type Config struct {
	Logging   LoggingConfig   `json:"logging"`
	Transport TransportConfig `json:"transport"`
	Protocol  ProtocolConfig  `json:"protocol"`
	Loop      LoopConfig      `json:"loop"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Tasks     []TaskConfig    `json:"tasks,omitempty"`
	Storage   *StorageConfig  `json:"storage,omitempty"`
	Debug     DebugConfig     `json:"debug"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
	Peer    LoggingPeer `json:"peer"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LoggingPeer forwards log lines to the remote peer as protocol lines.
type LoggingPeer struct {
	Enabled    bool   `json:"enabled"`
	Key        string `json:"key,omitempty"` // default "log"
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

// TransportConfig selects the byte stream to the peer.
//
//	"transport": { "kind": "serial", "path": "/dev/ttyUSB0", "baud": 115200 }
type TransportConfig struct {
	Kind        string `json:"kind"` // serial | tcp | stdio | console
	Path        string `json:"path,omitempty"`
	Baud        int    `json:"baud,omitempty"`
	Addr        string `json:"addr,omitempty"`
	DialTimeout string `json:"dial_timeout,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
	Queue       int    `json:"queue,omitempty"`
}

// ProtocolConfig shapes the line protocol. Separators are single bytes.
type ProtocolConfig struct {
	BufferSize     int    `json:"buffer_size,omitempty"`
	Terminator     string `json:"terminator,omitempty"`
	FieldSeparator string `json:"field_separator,omitempty"`
	ArgSeparator   string `json:"arg_separator,omitempty"`
	Echo           bool   `json:"echo"`
	// Serial disables argument parsing; only keys are matched.
	Serial bool `json:"serial,omitempty"`
}

type LoopConfig struct {
	Interval string `json:"interval,omitempty"` // default "10ms"
	Watchdog bool   `json:"watchdog"`
}

type SchedulerConfig struct {
	Enabled  bool   `json:"enabled"`
	Timezone string `json:"timezone,omitempty"` // cron triggers only
}

// TaskConfig is a scheduled protocol line. Interval schedules run as
// cooperative tasks on the poll loop; cron schedules go through the trigger.
// A line starting with '>' is written to the peer instead of dispatched.
type TaskConfig struct {
	Name     string `json:"name"`
	Schedule string `json:"schedule"`
	Line     string `json:"line"`
	Repeats  *bool  `json:"repeats,omitempty"` // default true
	Active   *bool  `json:"active,omitempty"`  // default true
}

func (t TaskConfig) IsRepeating() bool { return t.Repeats == nil || *t.Repeats }
func (t TaskConfig) IsActive() bool    { return t.Active == nil || *t.Active }

// StorageConfig controls the dispatch journal.
//
//	"storage": { "driver": "sqlite", "path": "./pgremote.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite
}

// DebugConfig controls the optional HTTP debug server (pprof, /healthz and a
// JSON /status snapshot). It binds to loopback unless a token is set or
// allow_insecure is true.
type DebugConfig struct {
	Enabled              bool   `json:"enabled"`
	Addr                 string `json:"addr,omitempty"` // default "127.0.0.1:6060"
	Token                string `json:"token,omitempty"`
	AllowInsecure        bool   `json:"allow_insecure,omitempty"`
	ReadTimeout          string `json:"read_timeout,omitempty"`
	IdleTimeout          string `json:"idle_timeout,omitempty"`
	MutexProfileFraction int    `json:"mutex_profile_fraction,omitempty"`
	BlockProfileRate     int    `json:"block_profile_rate,omitempty"`
}
