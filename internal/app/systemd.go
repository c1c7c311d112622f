package app

import (
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// serviceNotifier reports lifecycle state to the service manager.
type serviceNotifier interface {
	Notify(state string) (bool, error)
	// WatchdogInterval is the configured watchdog timeout, or 0 when the
	// service manager does not expect pings.
	WatchdogInterval() time.Duration
}

type sdNotifier struct{}

func (sdNotifier) Notify(state string) (bool, error) { return daemon.SdNotify(false, state) }

func (sdNotifier) WatchdogInterval() time.Duration {
	d, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return 0
	}
	return d
}

const (
	sdReady    = daemon.SdNotifyReady
	sdStopping = daemon.SdNotifyStopping
	sdWatchdog = daemon.SdNotifyWatchdog
)
