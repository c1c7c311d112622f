package remote

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrKeyRequired     = errors.New("command key required")
	ErrNilHandler      = errors.New("command handler is nil")
	ErrArgumentCount   = errors.New("argument count mismatch")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Command is an entry of the dispatch table: a key plus a handler with a fixed
// number of typed parameters.
//
// Each arity has its own implementation holding a reusable argument tuple, so
// dispatching never allocates per-argument storage.
type Command interface {
	Key() string
	Arity() int
	invoke(args []string) error
}

func checkKey(key string, fnNil bool) error {
	if strings.TrimSpace(key) == "" {
		return ErrKeyRequired
	}
	if fnNil {
		return fmt.Errorf("%q: %w", key, ErrNilHandler)
	}
	return nil
}

func checkCount(args []string, want int) error {
	if len(args) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrArgumentCount, len(args), want)
	}
	return nil
}

func argErr(i int, err error) error {
	return fmt.Errorf("%w %d: %v", ErrInvalidArgument, i, err)
}

type handler0 struct {
	key string
	fn  func()
}

// Handle0 registers a handler without parameters. Any text after the key is
// ignored.
func Handle0(key string, fn func()) (Command, error) {
	if err := checkKey(key, fn == nil); err != nil {
		return nil, err
	}
	return &handler0{key: key, fn: fn}, nil
}

func (h *handler0) Key() string { return h.key }
func (h *handler0) Arity() int  { return 0 }

func (h *handler0) invoke([]string) error {
	h.fn()
	return nil
}

type handler1[A any] struct {
	key string
	fn  func(A)
	a   *slot[A]
}

// Handle1 registers a handler taking one argument.
func Handle1[A any](key string, fn func(A)) (Command, error) {
	if err := checkKey(key, fn == nil); err != nil {
		return nil, err
	}
	a, err := newSlot[A]()
	if err != nil {
		return nil, fmt.Errorf("%q: %w", key, err)
	}
	return &handler1[A]{key: key, fn: fn, a: a}, nil
}

func (h *handler1[A]) Key() string { return h.key }
func (h *handler1[A]) Arity() int  { return 1 }

func (h *handler1[A]) invoke(args []string) error {
	if err := checkCount(args, 1); err != nil {
		return err
	}
	if err := h.a.set(args[0]); err != nil {
		return argErr(0, err)
	}
	h.fn(h.a.val)
	return nil
}

type handler2[A, B any] struct {
	key string
	fn  func(A, B)
	a   *slot[A]
	b   *slot[B]
}

// Handle2 registers a handler taking two arguments.
func Handle2[A, B any](key string, fn func(A, B)) (Command, error) {
	if err := checkKey(key, fn == nil); err != nil {
		return nil, err
	}
	a, err := newSlot[A]()
	if err != nil {
		return nil, fmt.Errorf("%q arg 0: %w", key, err)
	}
	b, err := newSlot[B]()
	if err != nil {
		return nil, fmt.Errorf("%q arg 1: %w", key, err)
	}
	return &handler2[A, B]{key: key, fn: fn, a: a, b: b}, nil
}

func (h *handler2[A, B]) Key() string { return h.key }
func (h *handler2[A, B]) Arity() int  { return 2 }

func (h *handler2[A, B]) invoke(args []string) error {
	if err := checkCount(args, 2); err != nil {
		return err
	}
	if err := h.a.set(args[0]); err != nil {
		return argErr(0, err)
	}
	if err := h.b.set(args[1]); err != nil {
		return argErr(1, err)
	}
	h.fn(h.a.val, h.b.val)
	return nil
}

type handler3[A, B, C any] struct {
	key string
	fn  func(A, B, C)
	a   *slot[A]
	b   *slot[B]
	c   *slot[C]
}

// Handle3 registers a handler taking three arguments.
func Handle3[A, B, C any](key string, fn func(A, B, C)) (Command, error) {
	if err := checkKey(key, fn == nil); err != nil {
		return nil, err
	}
	a, err := newSlot[A]()
	if err != nil {
		return nil, fmt.Errorf("%q arg 0: %w", key, err)
	}
	b, err := newSlot[B]()
	if err != nil {
		return nil, fmt.Errorf("%q arg 1: %w", key, err)
	}
	c, err := newSlot[C]()
	if err != nil {
		return nil, fmt.Errorf("%q arg 2: %w", key, err)
	}
	return &handler3[A, B, C]{key: key, fn: fn, a: a, b: b, c: c}, nil
}

func (h *handler3[A, B, C]) Key() string { return h.key }
func (h *handler3[A, B, C]) Arity() int  { return 3 }

func (h *handler3[A, B, C]) invoke(args []string) error {
	if err := checkCount(args, 3); err != nil {
		return err
	}
	if err := h.a.set(args[0]); err != nil {
		return argErr(0, err)
	}
	if err := h.b.set(args[1]); err != nil {
		return argErr(1, err)
	}
	if err := h.c.set(args[2]); err != nil {
		return argErr(2, err)
	}
	h.fn(h.a.val, h.b.val, h.c.val)
	return nil
}

type handler4[A, B, C, D any] struct {
	key string
	fn  func(A, B, C, D)
	a   *slot[A]
	b   *slot[B]
	c   *slot[C]
	d   *slot[D]
}

// Handle4 registers a handler taking four arguments.
func Handle4[A, B, C, D any](key string, fn func(A, B, C, D)) (Command, error) {
	if err := checkKey(key, fn == nil); err != nil {
		return nil, err
	}
	a, err := newSlot[A]()
	if err != nil {
		return nil, fmt.Errorf("%q arg 0: %w", key, err)
	}
	b, err := newSlot[B]()
	if err != nil {
		return nil, fmt.Errorf("%q arg 1: %w", key, err)
	}
	c, err := newSlot[C]()
	if err != nil {
		return nil, fmt.Errorf("%q arg 2: %w", key, err)
	}
	d, err := newSlot[D]()
	if err != nil {
		return nil, fmt.Errorf("%q arg 3: %w", key, err)
	}
	return &handler4[A, B, C, D]{key: key, fn: fn, a: a, b: b, c: c, d: d}, nil
}

func (h *handler4[A, B, C, D]) Key() string { return h.key }
func (h *handler4[A, B, C, D]) Arity() int  { return 4 }

func (h *handler4[A, B, C, D]) invoke(args []string) error {
	if err := checkCount(args, 4); err != nil {
		return err
	}
	if err := h.a.set(args[0]); err != nil {
		return argErr(0, err)
	}
	if err := h.b.set(args[1]); err != nil {
		return argErr(1, err)
	}
	if err := h.c.set(args[2]); err != nil {
		return argErr(2, err)
	}
	if err := h.d.set(args[3]); err != nil {
		return argErr(3, err)
	}
	h.fn(h.a.val, h.b.val, h.c.val, h.d.val)
	return nil
}

// Must panics if err is non-nil. Intended for static command tables.
func Must(c Command, err error) Command {
	if err != nil {
		panic(err)
	}
	return c
}
