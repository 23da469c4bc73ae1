package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock(t *testing.T) {
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewFakeClock(start)

	assert.Equal(t, start, c.Now())
	assert.Equal(t, start, c.Now())

	c.Advance(time.Hour)
	assert.Equal(t, start.Add(time.Hour), c.Now())

	c.Set(start)
	c.WithStep(time.Second)
	assert.Equal(t, start, c.Now())
	assert.Equal(t, start.Add(time.Second), c.Now())
}

func TestSystemClockIsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, SystemClock{}.Now().Location())
}
