// Package transport opens the byte stream to the remote peer and pumps its
// input into a queue that the poll loop can drain without blocking.
package transport
