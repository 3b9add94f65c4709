package engine

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/daqo/pomodoro/internal/effects"
	"github.com/daqo/pomodoro/internal/models"
	"github.com/daqo/pomodoro/internal/store"
	"github.com/daqo/pomodoro/internal/util"
)

// State is the engine's current mode.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	// StateCompleting exists only for the duration of the atomic hand-off
	// between a finished work interval and the rest interval chained after
	// it; it is never observable through Status.
	StateCompleting State = "completing"
)

// Rejections at the start boundary. No state change accompanies them.
var (
	ErrInvalidLabel    = errors.New("invalid label")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidDate     = errors.New("invalid date")
	ErrNotRunning      = errors.New("no interval running")
	ErrAlreadyRunning  = errors.New("an interval is already running")
	ErrEntryNotFound   = errors.New("entry not found")
)

// Clock is the arm/disarm side of the background clock. The completion side
// is consumed by Run.
type Clock interface {
	Arm(deadline time.Time, entryID uint)
	Disarm()
}

// Config carries the fixed rest interval settings.
type Config struct {
	RestMinutes float64
	RestLabel   string
}

// Status is a point-in-time view for the presentation layer. Remaining is
// recomputed from the absolute deadline on every call, so a throttled or
// drifted display counter can always resynchronize from it.
type Status struct {
	State            State         `json:"state"`
	Entry            *models.Entry `json:"entry,omitempty"`
	RemainingSeconds float64       `json:"remaining_seconds"`
}

// Engine is the timer state machine. It owns what is currently running,
// drives work -> rest -> idle transitions and is the only writer of
// completion state. All mutation happens under one mutex; the background
// clock talks to it exclusively through Completion events.
type Engine struct {
	mu       sync.Mutex
	store    *store.Store
	clock    Clock
	notifier effects.Notifier
	player   effects.Player
	cfg      Config

	now func() time.Time

	state    State
	current  *models.Entry
	deadline time.Time

	// lastCompleted de-duplicates completion signals: both the background
	// clock and a cosmetic foreground tick may observe remaining <= 0 near
	// the boundary, so the guard compares entry identity, not signal count.
	lastCompleted uint
}

func New(st *store.Store, clock Clock, notifier effects.Notifier, player effects.Player, cfg Config) *Engine {
	if cfg.RestMinutes <= 0 {
		cfg.RestMinutes = 5
	}
	if cfg.RestLabel == "" {
		cfg.RestLabel = "Rest"
	}
	return &Engine{
		store:    st,
		clock:    clock,
		notifier: notifier,
		player:   player,
		cfg:      cfg,
		now:      time.Now,
		state:    StateIdle,
	}
}

// Start validates the input, persists a new work entry and arms the clock.
// Validation failures reject with no state change and no persisted record.
// An empty date means today in local time.
func (e *Engine) Start(label string, durationMinutes float64, date string) (*models.Entry, error) {
	label = strings.TrimSpace(label)
	if err := util.ValidateLabel(label); err != nil {
		return nil, ErrInvalidLabel
	}
	if err := util.ValidateDuration(durationMinutes); err != nil {
		return nil, ErrInvalidDuration
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// at most one incomplete entry may exist; construction order here is
	// what upholds that invariant
	if e.state == StateRunning {
		return nil, ErrAlreadyRunning
	}

	if date == "" {
		date = util.LocalDate(e.now())
	} else if err := util.ValidateDate(date); err != nil {
		return nil, ErrInvalidDate
	}

	entry, err := e.store.Insert(label, durationMinutes, date, models.KindWork)
	if err != nil {
		return nil, fmt.Errorf("start interval: %w", err)
	}
	e.runLocked(entry)
	return entry, nil
}

// ResumeFromPersisted restores the engine from the store at process start.
// An ongoing entry whose deadline is still ahead re-enters Running with the
// recomputed remaining time. A deadline already in the past is a completion
// that merely never got flushed: the entry is marked complete without
// re-entering Running and without retroactively starting the chained rest.
func (e *Engine) ResumeFromPersisted() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, err := e.store.QueryOngoing()
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	if entry == nil {
		e.state = StateIdle
		return nil
	}

	if !entry.Deadline().After(e.now()) {
		if err := e.store.MarkComplete(entry.ID); err != nil {
			return fmt.Errorf("resume: flush stale completion: %w", err)
		}
		e.lastCompleted = entry.ID
		e.state = StateIdle
		return nil
	}

	e.runLocked(entry)
	return nil
}

// HandleCompletion applies a background clock signal. It is a no-op unless
// the engine is Running and the signal names the current, not-yet-handled
// entry. A work completion chains straight into a rest interval; a rest
// completion disarms the clock and returns to Idle.
func (e *Engine) HandleCompletion(sig Completion) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return nil
	}
	if sig.EntryID == e.lastCompleted {
		return nil
	}
	if e.current == nil || sig.EntryID != e.current.ID {
		return nil
	}

	entry := e.current
	e.state = StateCompleting
	e.completeLocked(entry)

	e.notifier.Notify(string(entry.Kind), entry.Name)
	e.player.Play(string(entry.Kind), entry.Kind == models.KindWork)

	if entry.Kind != models.KindWork {
		e.idleLocked()
		return nil
	}

	rest, err := e.store.Insert(e.cfg.RestLabel, e.cfg.RestMinutes, entry.Date, models.KindRest)
	if err != nil {
		e.idleLocked()
		return fmt.Errorf("chain rest interval: %w", err)
	}
	e.runLocked(rest)
	return nil
}

// ManualComplete ends the running interval early. It never chains a rest
// interval; that chain belongs to deadline-driven work completion only.
func (e *Engine) ManualComplete() (*models.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return nil, ErrNotRunning
	}
	entry := e.current
	e.completeLocked(entry)
	e.idleLocked()
	return entry, nil
}

// ClickEntry implements the click-on-entry command: resume the entry if it
// is incomplete and its deadline is still ahead, otherwise mark it complete.
func (e *Engine) ClickEntry(id uint) (*models.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrEntryNotFound
	}
	if entry.Completed {
		return entry, nil
	}

	if !entry.Deadline().After(e.now()) {
		e.completeLocked(entry)
		if e.current != nil && e.current.ID == entry.ID {
			e.idleLocked()
		}
		return entry, nil
	}

	e.runLocked(entry)
	return entry, nil
}

// Reconcile is the visibility-regain resynchronization point: it recomputes
// the displayed remaining time from the absolute deadline and silences any
// looping alert, treating the user's return as acknowledgment. It never
// mutates completion state; the display counter is cosmetic and must not be
// the completion authority.
func (e *Engine) Reconcile() Status {
	e.player.StopAll()
	return e.Status()
}

// Status reports the current state with remaining time recomputed from the
// deadline.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning || e.current == nil {
		return Status{State: e.state}
	}
	return Status{
		State:            StateRunning,
		Entry:            e.current,
		RemainingSeconds: Remaining(e.deadline, e.now()).Seconds(),
	}
}

// Remaining is the pure drift-correction function: max(0, deadline - now).
func Remaining(deadline, now time.Time) time.Duration {
	remaining := deadline.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Abort drops any running interval without completing it and disarms the
// clock. Used before a full-store reset or snapshot restore.
func (e *Engine) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.idleLocked()
	e.lastCompleted = 0
}

// Run consumes clock completions until the channel closes. Meant to run in
// its own goroutine for the life of the process.
func (e *Engine) Run(completions <-chan Completion) {
	for sig := range completions {
		if err := e.HandleCompletion(sig); err != nil {
			log.Printf("warning: complete interval %d: %v", sig.EntryID, err)
		}
	}
}

// completeLocked flushes completion to the store and records the entry as
// handled. A persistence fault is surfaced as a warning without rolling
// back the in-memory transition.
func (e *Engine) completeLocked(entry *models.Entry) {
	if err := e.store.MarkComplete(entry.ID); err != nil {
		log.Printf("warning: persist completion of entry %d: %v", entry.ID, err)
	}
	entry.Completed = true
	e.lastCompleted = entry.ID
}

func (e *Engine) runLocked(entry *models.Entry) {
	e.current = entry
	e.deadline = entry.Deadline()
	e.state = StateRunning
	e.clock.Arm(e.deadline, entry.ID)
}

func (e *Engine) idleLocked() {
	e.clock.Disarm()
	e.current = nil
	e.state = StateIdle
}
