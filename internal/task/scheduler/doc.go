// Package scheduler runs named tasks cooperatively from a caller-driven tick.
//
// A Task couples a CommandTimer with an Idle/Active state. The Scheduler holds
// a fixed list of tasks and, on every Tick while it is Active, gives each
// Active task exactly one chance to fire, in list order. Nothing here starts
// goroutines or takes locks: the caller's poll loop is the only thread of
// control. Calling Tick from a second goroutine while the loop also touches
// the same tasks is a data race the caller must prevent.
//
// ParseSchedule normalizes schedule strings from configuration: intervals
// become cooperative tasks, cron expressions are handed to the trigger service.
package scheduler
