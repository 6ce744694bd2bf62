// Package gameclock tracks elapsed match time against a monotonic clock
// source. The clock is driven purely by a coarse repeating poll rather
// than frame callbacks, so it keeps counting while the host page is not
// visible; RestoredElapsed repairs whatever lag a fully suspended poll
// accumulated in the background.
package gameclock

import (
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/touchlineapp/touchline/go/internal/models"
)

// pollInterval is deliberately much finer than one second; the whole-
// second coalescing in the poll loop turns any number of polls into a
// single logical tick.
const pollInterval = 50 * time.Millisecond

// TickFunc receives each newly reached whole second of elapsed time.
type TickFunc func(seconds int)

// PrecisionClock counts fractional elapsed seconds from an arbitrary
// offset and emits a tick whenever the floor value changes.
type PrecisionClock struct {
	clock  clockwork.Clock
	onTick TickFunc

	mu        sync.Mutex
	running   bool
	offset    float64
	startedAt time.Time
	lastWhole int
	stopCh    chan struct{}
}

// New returns a stopped clock at offset zero.
func New(clock clockwork.Clock, onTick TickFunc) *PrecisionClock {
	return &PrecisionClock{
		clock:  clock,
		onTick: onTick,
	}
}

// Start begins polling from the stored offset. No-op if already running.
func (c *PrecisionClock) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.startedAt = c.clock.Now()
	c.lastWhole = int(math.Floor(c.offset))
	c.stopCh = make(chan struct{})
	stopCh := c.stopCh
	c.mu.Unlock()

	go c.poll(stopCh)
}

// Stop cancels the poll loop. The stored offset is left untouched;
// callers wanting the final precise reading take CurrentTime before
// stopping. Idempotent.
func (c *PrecisionClock) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stopCh)
	c.stopCh = nil
	c.mu.Unlock()
}

// Reset stops the clock, replaces the offset, and emits one tick for the
// new floor value so observers see the reset without waiting for a poll.
func (c *PrecisionClock) Reset(offset float64) {
	c.Stop()

	c.mu.Lock()
	if offset < 0 {
		offset = 0
	}
	c.offset = offset
	whole := int(math.Floor(offset))
	c.lastWhole = whole
	c.mu.Unlock()

	if c.onTick != nil {
		c.onTick(whole)
	}
}

// CurrentTime returns the precise fractional elapsed seconds while
// running, or the stored offset while stopped. Never has side effects.
func (c *PrecisionClock) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return c.offset
	}
	return c.offset + c.clock.Since(c.startedAt).Seconds()
}

// IsRunning reports whether the poll loop is active.
func (c *PrecisionClock) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *PrecisionClock) poll(stopCh chan struct{}) {
	ticker := c.clock.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.Chan():
			c.mu.Lock()
			if !c.running {
				c.mu.Unlock()
				return
			}
			elapsed := c.offset + c.clock.Since(c.startedAt).Seconds()
			whole := int(math.Floor(elapsed))
			changed := whole != c.lastWhole
			if changed {
				c.lastWhole = whole
			}
			c.mu.Unlock()

			// Callback runs outside the lock: the handler may stop or
			// reset this clock.
			if changed && c.onTick != nil {
				c.onTick(whole)
			}
		}
	}
}

// RestoredElapsed computes the authoritative elapsed value after the host
// returns to foreground: the saved elapsed plus the wall-clock time spent
// away, floored to whole seconds.
func RestoredElapsed(snap models.TimerSnapshot, now time.Time) float64 {
	awayMs := now.UnixMilli() - snap.WallClockTimestamp
	if awayMs < 0 {
		awayMs = 0
	}
	return math.Floor(snap.ElapsedSeconds + float64(awayMs)/1000.0)
}
