// Package trigger turns cron schedules into protocol lines.
//
// Cron runs its own goroutines, so firings are not executed here. Each firing
// is queued on a bounded inbox that the poll loop drains and dispatches on its
// own goroutine, which keeps command handlers single-threaded.
package trigger
