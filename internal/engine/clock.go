package engine

import (
	"sync"
	"time"
)

// Completion is the single event a BackgroundClock emits when an armed
// deadline passes. EntryID is the idempotency key the engine checks before
// applying any state mutation.
type Completion struct {
	EntryID uint
	At      time.Time
}

type clockCommand struct {
	arm      bool
	deadline time.Time
	entryID  uint
}

// BackgroundClock watches one absolute deadline from its own goroutine and
// emits exactly one Completion per armed deadline. It compares wall-clock
// time at a coarse fixed resolution instead of sleeping for the whole
// remaining duration, so a suspended or heavily throttled host cannot make
// it overshoot by more than one poll interval.
//
// It holds no entry data beyond the idempotency key; the deadline is the
// only state it owns. Communication is one-way messages: arm/disarm in,
// complete out.
type BackgroundClock struct {
	interval    time.Duration
	cmds        chan clockCommand
	completions chan Completion
	stop        chan struct{}
	stopOnce    sync.Once

	now func() time.Time
}

// NewBackgroundClock starts the clock goroutine. interval <= 0 means the
// standard 1-second poll resolution; tests pass something shorter.
func NewBackgroundClock(interval time.Duration) *BackgroundClock {
	if interval <= 0 {
		interval = time.Second
	}
	c := &BackgroundClock{
		interval:    interval,
		cmds:        make(chan clockCommand),
		completions: make(chan Completion, 1),
		stop:        make(chan struct{}),
		now:         time.Now,
	}
	go c.run()
	return c
}

// Arm replaces any previously watched deadline. There is at most one active
// poll per clock; re-arming is the only way to change the deadline.
func (c *BackgroundClock) Arm(deadline time.Time, entryID uint) {
	select {
	case c.cmds <- clockCommand{arm: true, deadline: deadline, entryID: entryID}:
	case <-c.stop:
	}
}

// Disarm cancels any pending poll. Safe to call when already disarmed.
func (c *BackgroundClock) Disarm() {
	select {
	case c.cmds <- clockCommand{}:
	case <-c.stop:
	}
}

// Completions is the event stream consumed by the engine's run loop.
func (c *BackgroundClock) Completions() <-chan Completion {
	return c.completions
}

// Stop terminates the clock goroutine. Idempotent.
func (c *BackgroundClock) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *BackgroundClock) run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	var (
		armed    bool
		deadline time.Time
		entryID  uint
	)
	for {
		select {
		case <-c.stop:
			return
		case cmd := <-c.cmds:
			armed, deadline, entryID = cmd.arm, cmd.deadline, cmd.entryID
		case <-ticker.C:
			if !armed {
				continue
			}
			now := c.now()
			if now.Before(deadline) {
				continue
			}
			// one event per armed deadline, never re-emitted on later ticks
			armed = false
			select {
			case c.completions <- Completion{EntryID: entryID, At: now}:
			default:
			}
		}
	}
}
