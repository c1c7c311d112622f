package remote

// LineBuffer accumulates bytes into lines without growing.
//
// A line is complete when the terminator byte arrives or when the buffer is
// full. In both cases the final slot is overwritten with NUL and the bytes
// before it form the line. A full buffer therefore yields cap-1 bytes and is
// reported as truncated.
type LineBuffer struct {
	buf  []byte
	n    int
	term byte
}

// NewLineBuffer returns a buffer holding at most size bytes, including the
// slot used by the terminator. size is raised to 2 if smaller.
func NewLineBuffer(size int, terminator byte) *LineBuffer {
	if size < 2 {
		size = 2
	}
	return &LineBuffer{buf: make([]byte, size), term: terminator}
}

// Put appends b. When a line completes it returns the line, whether it was
// forced by a full buffer, and ready=true; the cursor is back at the start.
// The returned slice aliases the buffer and is only valid until the next Put.
func (l *LineBuffer) Put(b byte) (line []byte, truncated, ready bool) {
	l.buf[l.n] = b
	l.n++
	switch {
	case b == l.term:
		end := l.n - 1
		l.buf[end] = 0
		l.n = 0
		return l.buf[:end], false, true
	case l.n == len(l.buf):
		end := l.n - 1
		l.buf[end] = 0
		l.n = 0
		return l.buf[:end], true, true
	}
	return nil, false, false
}

// Len returns the number of pending bytes.
func (l *LineBuffer) Len() int { return l.n }

// Cap returns the buffer size.
func (l *LineBuffer) Cap() int { return len(l.buf) }

// Pending returns a copy of the bytes received since the last completed line.
func (l *LineBuffer) Pending() []byte { return append([]byte(nil), l.buf[:l.n]...) }

// Reset drops pending bytes.
func (l *LineBuffer) Reset() { l.n = 0 }
