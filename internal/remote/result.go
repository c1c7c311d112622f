package remote

// Status is the outcome of dispatching one line.
type Status int

const (
	// Dispatched: a command matched and its handler ran.
	Dispatched Status = iota
	// NoMatch: no registered key is a prefix of the line.
	NoMatch
	// Truncated: the line was forced out by a full buffer and matched nothing.
	Truncated
	// ArgumentCountMismatch: the argument count differs from the handler's arity.
	// The handler did not run.
	ArgumentCountMismatch
	// InvalidArgument: an argument could not be converted. The handler did not run.
	InvalidArgument
)

func (s Status) String() string {
	switch s {
	case Dispatched:
		return "dispatched"
	case NoMatch:
		return "no_match"
	case Truncated:
		return "truncated"
	case ArgumentCountMismatch:
		return "argument_count_mismatch"
	case InvalidArgument:
		return "invalid_argument"
	default:
		return "unknown"
	}
}

// Result describes one dispatched line.
type Result struct {
	Status Status
	// Key of the matched command; empty when nothing matched.
	Key string
	// Line as matched, without terminator.
	Line string
	// Truncated is set when the buffer filled before a terminator arrived.
	Truncated bool
	// Err carries the argument error for ArgumentCountMismatch and InvalidArgument.
	Err error
}

// OK reports whether a handler ran.
func (r Result) OK() bool { return r.Status == Dispatched }
