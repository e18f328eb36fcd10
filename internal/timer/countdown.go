// Package timer implements the assessment countdown. Remaining time is always
// derived from the persisted start timestamp, never from an in-memory counter,
// so reloading the workspace cannot grant extra time.
package timer

import (
	"adaptive/internal/logging"
	"adaptive/internal/session"
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultDuration is the length of an assessment session.
const DefaultDuration = 3600 * time.Second

// TickPeriod is how often Run re-derives the remaining time.
const TickPeriod = time.Second

// Clock returns the current time.
type Clock func() time.Time

// Countdown derives remaining session time and fires onExpire at most once.
type Countdown struct {
	mu       sync.Mutex
	sessions *session.Store
	duration time.Duration
	onExpire func()

	now          Clock
	startedAt    time.Time
	started      bool
	expiredFired bool
}

// New creates a countdown over the session store. duration <= 0 means
// DefaultDuration.
func New(sessions *session.Store, duration time.Duration, onExpire func()) *Countdown {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Countdown{
		sessions: sessions,
		duration: duration,
		onExpire: onExpire,
		now:      time.Now,
	}
}

// Start establishes startedAt, reusing the persisted value when present.
// A missing or corrupt stored value starts the clock now. Start never fires
// onExpire, even when the recovered time is already used up; the first Tick
// does.
func (c *Countdown) Start(now Clock) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if now != nil {
		c.now = now
	}
	if c.started {
		return nil
	}

	startedAt, ok, err := c.sessions.StartedAt()
	if err != nil {
		return fmt.Errorf("failed to read timer start: %w", err)
	}
	if !ok {
		startedAt = c.now()
		if err := c.sessions.SetStartedAt(startedAt); err != nil {
			return fmt.Errorf("failed to persist timer start: %w", err)
		}
		logging.Timer("Timer started at %s", startedAt.Format(time.RFC3339))
	} else {
		logging.Timer("Timer recovered start %s", startedAt.Format(time.RFC3339))
	}

	c.startedAt = startedAt
	c.started = true
	return nil
}

// remainingLocked computes max(0, duration - (now - startedAt)).
func (c *Countdown) remainingLocked() time.Duration {
	if !c.started {
		return c.duration
	}
	left := c.duration - c.now().Sub(c.startedAt)
	if left < 0 {
		return 0
	}
	return left
}

// Remaining returns the time left without firing expiration.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingLocked()
}

// Tick returns the remaining whole seconds. The first Tick that observes zero
// invokes onExpire; later ticks keep returning zero.
func (c *Countdown) Tick() int {
	c.mu.Lock()
	left := c.remainingLocked()
	fire := c.started && left == 0 && !c.expiredFired
	if fire {
		c.expiredFired = true
	}
	c.mu.Unlock()

	if fire {
		logging.Timer("Timer expired")
		if c.onExpire != nil {
			c.onExpire()
		}
	}
	return int(left / time.Second)
}

// Expired reports whether onExpire has fired.
func (c *Countdown) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expiredFired
}

// StartedAt returns the effective start time and whether Start has run.
func (c *Countdown) StartedAt() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startedAt, c.started
}

// Duration returns the configured session length.
func (c *Countdown) Duration() time.Duration {
	return c.duration
}

// Run ticks every period until the context is cancelled or the timer expires.
// onTick, if set, receives each remaining value.
func (c *Countdown) Run(ctx context.Context, period time.Duration, onTick func(int)) error {
	if period <= 0 {
		period = TickPeriod
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			left := c.Tick()
			if onTick != nil {
				onTick(left)
			}
			if c.Expired() {
				logging.TimerDebug("Run loop stopping after expiration")
				return nil
			}
		}
	}
}

// Format renders remaining time as MM:SS.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
