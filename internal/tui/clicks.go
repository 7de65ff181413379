package tui

import (
	"time"

	"github.com/sadopc/nowdoing/internal/clock"
)

const (
	resetClicks    = 3
	resetClickIdle = 5 * time.Second
)

// clickCounter fires after need presses. The count starts over once idle has
// passed without a press.
type clickCounter struct {
	clock clock.Clock
	need  int
	idle  time.Duration
	count int
	last  time.Time
}

func newClickCounter(c clock.Clock, need int, idle time.Duration) clickCounter {
	if need < 1 {
		need = 1
	}
	return clickCounter{clock: c, need: need, idle: idle}
}

// press records one click and reports whether it completed the gesture.
func (c *clickCounter) press() bool {
	now := c.clock.Now()
	c.expire(now)
	c.count++
	c.last = now
	if c.count >= c.need {
		c.count = 0
		return true
	}
	return false
}

// expire drops a stale partial gesture.
func (c *clickCounter) expire(now time.Time) {
	if c.count > 0 && now.Sub(c.last) >= c.idle {
		c.count = 0
	}
}

// pending is the number of presses counted toward the current gesture.
func (c clickCounter) pending() int {
	if c.count > 0 && c.clock.Now().Sub(c.last) >= c.idle {
		return 0
	}
	return c.count
}
