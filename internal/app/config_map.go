package app

import (
	"pgremote/internal/config"
	"pgremote/internal/remote"
	"pgremote/internal/transport"
	logx "pgremote/pkg/logx"
)

func sepByte(s string) byte {
	if s == "" {
		return 0
	}
	return s[0]
}

func mapProtocolConfig(pc config.ProtocolConfig) remote.Config {
	return remote.Config{
		BufferSize:     pc.BufferSize,
		Terminator:     sepByte(pc.Terminator),
		FieldSeparator: sepByte(pc.FieldSeparator),
		ArgSeparator:   sepByte(pc.ArgSeparator),
		Echo:           pc.Echo,
	}
}

func mapTransportConfig(tc config.TransportConfig) (transport.Config, error) {
	dial, err := config.ParseDurationOrDefault("transport.dial_timeout", tc.DialTimeout, transport.DefaultDialTimeout)
	if err != nil {
		return transport.Config{}, err
	}
	return transport.Config{
		Kind:        tc.Kind,
		Path:        tc.Path,
		Baud:        tc.Baud,
		Addr:        tc.Addr,
		DialTimeout: dial,
		Prompt:      tc.Prompt,
	}, nil
}

func mapLoggingConfig(lc config.LoggingConfig) logx.Config {
	return logx.Config{
		Level:   lc.Level,
		Console: lc.Console,
		File:    logx.FileConfig{Enabled: lc.File.Enabled, Path: lc.File.Path},
		Peer: logx.PeerConfig{
			Enabled:    lc.Peer.Enabled,
			Key:        lc.Peer.Key,
			MinLevel:   lc.Peer.MinLevel,
			RatePerSec: lc.Peer.RatePerSec,
		},
	}
}
