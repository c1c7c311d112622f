// Package remote implements a line-oriented command protocol for a byte
// transport.
//
// Bytes accumulate in a fixed-size line buffer until a terminator arrives or
// the buffer fills. Each completed line is matched against a fixed command
// table by key prefix and dispatched synchronously. Lines have the form
//
//	key[=arg0,arg1,...]
//
// and arguments are converted to the parameter types of the registered
// handler. Every dispatch reports a Result instead of failing silently.
package remote
