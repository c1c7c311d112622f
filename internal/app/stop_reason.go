package app

// StopReason is logged when the app stops and sent to systemd as STATUS.
type StopReason string

const (
	StopUnknown    StopReason = "unknown"
	StopSignal     StopReason = "signal"
	StopFatalError StopReason = "fatal_error"
	StopPeerClosed StopReason = "peer_closed"
)
