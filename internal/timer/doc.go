// Package timer provides the polled timing primitives: an interval timer, a
// bounded event counter, and a timer that runs a command when it expires.
//
// None of the types block or start goroutines. State only changes when the
// caller invokes a method, typically once per iteration of a poll loop. The
// types are not safe for concurrent use.
package timer
