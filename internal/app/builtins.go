package app

import (
	"strings"
	"time"

	"pgremote/internal/remote"
	"pgremote/internal/task/scheduler"
	logx "pgremote/pkg/logx"
)

// Built-in command keys. No key is a prefix of another.
const (
	keyStatus   = "sta"
	keySched    = "sch"
	keyTask     = "tsk"
	keyInterval = "ivl"
	keyTaskRst  = "trs"
	keyResetAll = "rst"
	keyEcho     = "ech"
	keyLevel    = "lvl"
	keyCount    = "cnt"
	keyPing     = "png"
	keyError    = "err"
)

// builtins returns the command table. With args false only the arity-0
// commands are included, for serial mode.
func (a *App) builtins(args bool) []remote.Command {
	cmds := []remote.Command{
		remote.Must(remote.Handle0(keyStatus, a.cmdStatus)),
		remote.Must(remote.Handle0(keyResetAll, a.cmdResetAll)),
		remote.Must(remote.Handle0(keyCount, a.cmdCount)),
		remote.Must(remote.Handle0(keyPing, a.cmdPing)),
	}
	if !args {
		return cmds
	}
	return append(cmds,
		remote.Must(remote.Handle1(keySched, a.cmdSched)),
		remote.Must(remote.Handle2(keyTask, a.cmdTask)),
		remote.Must(remote.Handle2(keyInterval, a.cmdInterval)),
		remote.Must(remote.Handle1(keyTaskRst, a.cmdTaskReset)),
		remote.Must(remote.Handle1(keyEcho, a.cmdEcho)),
		remote.Must(remote.Handle1(keyLevel, a.cmdLevel)),
	)
}

func (a *App) reply(key string, value any) {
	if err := a.ctl.Reply(key, value); err != nil {
		a.log.Debug("reply failed", logx.String("key", key), logx.Err(err))
	}
}

func b2i(v bool) int {
	if v {
		return 1
	}
	return 0
}

func (a *App) task(name string) (*scheduler.Task, bool) {
	t, ok := a.sched.Task(strings.TrimSpace(name))
	if !ok {
		a.reply(keyError, "no task "+name)
	}
	return t, ok
}

func (a *App) cmdStatus() {
	a.reply(keySched, b2i(a.sched.State() == scheduler.Active))
	a.reply(keyTask, len(a.sched.Tasks()))
	a.reply("up", int64(a.uptime.Elapsed()/time.Second))
}

func (a *App) cmdSched(on bool) {
	if on {
		a.sched.Start()
	} else {
		a.sched.Stop()
	}
	a.reply(keySched, b2i(on))
}

func (a *App) cmdTask(name string, on bool) {
	t, ok := a.task(name)
	if !ok {
		return
	}
	if on {
		t.SetState(scheduler.Active)
	} else {
		t.SetState(scheduler.Idle)
	}
}

func (a *App) cmdInterval(name string, ms uint32) {
	t, ok := a.task(name)
	if !ok {
		return
	}
	t.Timer().SetInterval(time.Duration(ms) * time.Millisecond)
}

func (a *App) cmdTaskReset(name string) {
	if t, ok := a.task(name); ok {
		t.Reset()
	}
}

func (a *App) cmdResetAll() { a.sched.Reset() }

func (a *App) cmdEcho(on bool) { a.ctl.SetEcho(on) }

func (a *App) cmdLevel(level string) {
	if !logx.ValidLevel(level) {
		a.reply(keyError, "bad level "+level)
		return
	}
	a.logs.SetLevel(level)
	a.reply(keyLevel, a.logs.Level())
}

func (a *App) cmdCount() { a.reply(keyCount, a.dispatches.Count()) }

func (a *App) cmdPing() { a.reply(keyPing, 1) }
