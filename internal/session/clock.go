package session

import (
	"sync"
	"time"
)

// Clock schedules the automatic logout of one session. At most one timer is
// armed at any time: Schedule cancels the previous timer before arming the
// next, so a stale expiry can never fire after a new session starts.
type Clock struct {
	mu    sync.Mutex
	timer *time.Timer
}

// Schedule arms a one-shot call of onExpire at the given expiry. If the
// expiry is already in the past, onExpire runs once, immediately, on the
// calling goroutine.
func (c *Clock) Schedule(expiry time.Time, onExpire func()) {
	c.mu.Lock()
	c.stopLocked()
	delay := time.Until(expiry)
	if delay <= 0 {
		c.mu.Unlock()
		onExpire()
		return
	}
	c.timer = time.AfterFunc(delay, onExpire)
	c.mu.Unlock()
}

// Cancel disarms the pending timer. Safe to call when nothing is armed.
func (c *Clock) Cancel() {
	c.mu.Lock()
	c.stopLocked()
	c.mu.Unlock()
}

// Armed reports whether a timer is currently pending.
func (c *Clock) Armed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

func (c *Clock) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
