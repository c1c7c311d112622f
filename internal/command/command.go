// Package command defines the zero-argument capability that timers and
// schedulers trigger.
//
// Commands are owned by the application. Timers, tasks and schedulers only hold
// references and never create or release them.
package command

// Command is an action with no parameters and no result.
type Command interface {
	Execute()
}

// Func adapts a plain function (or a method value) to Command.
type Func func()

func (f Func) Execute() {
	if f != nil {
		f()
	}
}

// Nop is a Command that does nothing.
type Nop struct{}

func (Nop) Execute() {}

// IsNil reports whether c is nil or wraps a nil function.
func IsNil(c Command) bool {
	if c == nil {
		return true
	}
	if f, ok := c.(Func); ok && f == nil {
		return true
	}
	return false
}

// Execute runs c unless it is nil. It reports whether anything ran.
func Execute(c Command) bool {
	if IsNil(c) {
		return false
	}
	c.Execute()
	return true
}

type bound1[A any] struct {
	fn  func(A)
	arg A
}

func (b *bound1[A]) Execute() {
	if b.fn != nil {
		b.fn(b.arg)
	}
}

// With binds fn to a stored argument.
func With[A any](fn func(A), arg A) Command {
	return &bound1[A]{fn: fn, arg: arg}
}

type chain []Command

func (c chain) Execute() {
	for _, cmd := range c {
		Execute(cmd)
	}
}

// Chain runs cmds in order. Nil entries are skipped.
func Chain(cmds ...Command) Command {
	return chain(append([]Command(nil), cmds...))
}
