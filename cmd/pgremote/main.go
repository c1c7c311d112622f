package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"pgremote/internal/app"
	logx "pgremote/pkg/logx"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./pgremote.yaml", "path to config (json or yaml)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The app's own log service exists only once the config is loaded.
	boot := logx.NewConsole("info").With(logx.String("comp", "main"))

	a, err := app.NewApp(cfgPath)
	if err != nil {
		boot.Error("fatal", logx.String("config", cfgPath), logx.Err(err))
		os.Exit(1)
	}

	if err := a.Start(ctx); err != nil {
		boot.Error("fatal start", logx.Err(err))
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
	case <-a.Done():
	}
	reason := a.Reason()
	if ctx.Err() != nil {
		reason = app.StopSignal
	}
	if err := a.Stop(context.Background(), reason); err != nil || reason == app.StopFatalError {
		if err == nil {
			err = a.Err()
		}
		boot.Error("fatal", logx.String("reason", string(reason)), logx.Err(err))
		os.Exit(1)
	}
}
