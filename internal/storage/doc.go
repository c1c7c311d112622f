// Package storage keeps a journal of dispatched protocol lines and task
// firings. Backends are an append-only JSON Lines file or a SQLite database.
package storage
