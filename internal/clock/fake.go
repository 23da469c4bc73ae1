package clock

import (
	"sync"
	"time"
)

// FakeClock is a manually driven Clock for tests. With a step set, every
// call to Now moves the clock forward so successive records get distinct,
// ordered timestamps.
type FakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

// WithStep makes Now advance by d after each reading.
func (c *FakeClock) WithStep(d time.Duration) *FakeClock {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = d
	return c
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t.UTC()
	c.mu.Unlock()
}
