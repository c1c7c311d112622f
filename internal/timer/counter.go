package timer

// Counter counts events while active and reports when a limit is exceeded.
//
// It follows the same lifecycle as Interval, except that Reset zeroes the
// count regardless of the active state and mutations are ignored while
// inactive. A zero limit means unbounded.
type Counter struct {
	count  int64
	limit  int64
	active bool
}

// NewCounter returns an inactive counter.
func NewCounter(limit int64) *Counter {
	return &Counter{limit: clampLimit(limit)}
}

func clampLimit(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

// Start zeroes the count and activates the counter.
func (c *Counter) Start() {
	c.count = 0
	c.active = true
}

// StartWith sets the limit, then starts.
func (c *Counter) StartWith(limit int64) {
	c.limit = clampLimit(limit)
	c.Start()
}

func (c *Counter) Stop()   { c.active = false }
func (c *Counter) Resume() { c.active = true }
func (c *Counter) Reset()  { c.count = 0 }

func (c *Counter) Inc() { c.Add(1) }
func (c *Counter) Dec() { c.Sub(1) }

func (c *Counter) Add(n int64) {
	if c.active {
		c.count += n
	}
}

func (c *Counter) Sub(n int64) {
	if c.active {
		c.count -= n
	}
}

func (c *Counter) Count() int64     { return c.count }
func (c *Counter) Limit() int64     { return c.limit }
func (c *Counter) SetLimit(n int64) { c.limit = clampLimit(n) }
func (c *Counter) Active() bool     { return c.active }

// Exceeded reports whether the count is above a non-zero limit.
func (c *Counter) Exceeded() bool {
	if c.limit == 0 {
		return false
	}
	return c.count > c.limit
}
