// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package countdown

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/ticketclock/lib/clock"
)

// TickInterval is the fixed period between recomputations while
// running.
const TickInterval = time.Second

// warningThresholds are the seconds-remaining values that trigger a
// one-shot warning, in firing order.
var warningThresholds = [...]int{60, 30, 10}

// WarningMode selects how warning thresholds are matched against
// ticks.
type WarningMode string

const (
	// WarningExact fires a threshold only when a tick observes exactly
	// that many whole seconds remaining. A tick delayed across a
	// threshold (suspended process, overloaded host) drops that
	// warning.
	WarningExact WarningMode = "exact"

	// WarningCatchUp also fires every unfired threshold the countdown
	// passed since the previous observation, in descending order.
	// Thresholds already passed before Start are never fired.
	WarningCatchUp WarningMode = "catch_up"
)

// Callbacks are the per-countdown notification hooks. Both are
// optional. OnWarning receives the threshold (60, 30 or 10), at most
// once each; OnExpire fires at most once per deadline.
type Callbacks struct {
	OnExpire  func()
	OnWarning func(secondsRemaining int)
}

// Options configures an Engine.
type Options struct {
	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to a logger that discards everything.
	Logger *slog.Logger

	// Observers receive every transition, in registration order.
	Observers []Observer

	// WarningMode defaults to WarningExact.
	WarningMode WarningMode
}

// Engine is one reservation countdown. Each ticket being paid for gets
// its own Engine; engines share nothing.
//
// All methods are safe for concurrent use.
type Engine struct {
	clock       clock.Clock
	logger      *slog.Logger
	observers   []Observer
	warningMode WarningMode

	// generation is bumped whenever the pending timer is cancelled.
	// A tick carries the generation it was armed under and does
	// nothing once it moves on.
	generation atomic.Uint64

	// session is bumped when Start replaces the deadline and on
	// Dispose. Queued notifications carry the session they were
	// created under and are discarded once it moves on. Pause and
	// Resume leave it alone.
	session atomic.Uint64

	mu        sync.Mutex
	timer     *clock.Timer
	deadline  time.Time
	callbacks Callbacks
	remaining time.Duration

	// lastSeconds is the whole-second value of the previous
	// observation, used by WarningCatchUp to find crossed thresholds.
	lastSeconds int

	fired    map[int]bool
	expired  bool
	paused   bool
	disposed bool
}

// notification is a callback and/or observer event queued while the
// engine lock is held and delivered after it is released.
type notification struct {
	event    Event
	callback func()
}

// New creates an inert Engine.
func New(options Options) *Engine {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if options.WarningMode == "" {
		options.WarningMode = WarningExact
	}
	return &Engine{
		clock:       options.Clock,
		logger:      options.Logger,
		observers:   options.Observers,
		warningMode: options.WarningMode,
		fired:       make(map[int]bool),
	}
}

// Start (re)initializes the engine for deadline and returns the state
// after one immediate computation.
//
// The zero deadline tears the countdown down and leaves the engine
// inert. A deadline equal to the current one keeps the running
// countdown, its pause state and warning history, and only replaces
// the callbacks. Any other deadline resets warning history, expiry and
// pause, then computes the remaining time; if none is left OnExpire
// fires before Start returns and no tick is scheduled.
//
// Start on a disposed engine does nothing.
func (e *Engine) Start(deadline time.Time, callbacks Callbacks) State {
	e.mu.Lock()
	if e.disposed {
		state := e.stateLocked()
		e.mu.Unlock()
		return state
	}
	if !deadline.IsZero() && deadline.Equal(e.deadline) {
		e.callbacks = callbacks
		state := e.stateLocked()
		e.mu.Unlock()
		return state
	}

	e.cancelTimerLocked()
	e.session.Add(1)

	e.deadline = deadline
	e.callbacks = callbacks
	e.fired = make(map[int]bool)
	e.expired = false
	e.paused = false
	e.remaining = 0
	e.lastSeconds = 0

	now := e.clock.Now()
	var pending []notification

	if deadline.IsZero() {
		state := e.stateLocked()
		pending = append(pending, notification{event: Event{Kind: EventStarted, At: now, State: state}})
		session := e.session.Load()
		e.mu.Unlock()

		e.logger.Debug("countdown cleared")
		e.deliver(session, pending)
		return state
	}

	e.remaining = remainingUntil(deadline, now)
	e.lastSeconds = wholeSeconds(e.remaining)
	if e.remaining == 0 {
		e.expired = true
	} else {
		e.armLocked()
	}

	state := e.stateLocked()
	pending = append(pending, notification{event: Event{Kind: EventStarted, At: now, State: state}})
	if e.expired {
		pending = append(pending, notification{
			event:    Event{Kind: EventExpired, At: now, State: state},
			callback: callbacks.OnExpire,
		})
	}
	session := e.session.Load()
	e.mu.Unlock()

	e.logger.Debug("countdown started",
		"deadline", deadline,
		"remaining", state.Remaining,
		"expired", state.IsExpired,
	)
	e.deliver(session, pending)
	return state
}

// StartAt parses expiresAt with ParseDeadline and starts the engine.
// An empty or unparseable timestamp leaves the engine inert.
func (e *Engine) StartAt(expiresAt string, callbacks Callbacks) State {
	deadline, ok := ParseDeadline(expiresAt)
	if !ok && expiresAt != "" {
		e.logger.Warn("ignoring unparseable reservation deadline", "expires_at", expiresAt)
	}
	return e.Start(deadline, callbacks)
}

// Pause stops ticking and freezes the state at its last computed
// value. Warning history is kept. Pausing a paused engine has no
// effect.
func (e *Engine) Pause() {
	e.mu.Lock()
	if e.paused || e.disposed {
		e.mu.Unlock()
		return
	}
	e.cancelTimerLocked()
	e.paused = true

	state := e.stateLocked()
	session := e.session.Load()
	e.mu.Unlock()

	e.logger.Debug("countdown paused", "remaining", state.Remaining)
	e.deliver(session, []notification{{event: Event{Kind: EventPaused, At: e.clock.Now(), State: state}}})
}

// Resume restarts ticking after Pause. The remaining time is
// recomputed immediately from the absolute deadline, so time spent
// paused still counts against the reservation. If the deadline passed
// while paused, OnExpire fires before Resume returns. Resuming an
// engine that is not paused has no effect.
func (e *Engine) Resume() {
	e.mu.Lock()
	if !e.paused || e.disposed {
		e.mu.Unlock()
		return
	}
	e.paused = false

	now := e.clock.Now()
	justExpired := false
	if !e.deadline.IsZero() && !e.expired {
		e.remaining = remainingUntil(e.deadline, now)
		if e.remaining == 0 {
			e.expired = true
			justExpired = true
		} else {
			e.armLocked()
		}
	}

	state := e.stateLocked()
	pending := []notification{{event: Event{Kind: EventResumed, At: now, State: state}}}
	if justExpired {
		pending = append(pending, notification{
			event:    Event{Kind: EventExpired, At: now, State: state},
			callback: e.callbacks.OnExpire,
		})
	}
	session := e.session.Load()
	e.mu.Unlock()

	e.logger.Debug("countdown resumed", "remaining", state.Remaining, "expired", state.IsExpired)
	e.deliver(session, pending)
}

// Dispose cancels the pending tick and returns the engine to the inert
// state permanently. Notifications not yet delivered are discarded,
// but a callback whose delivery was already under way on another
// goroutine may still run. Start and Resume on a disposed engine do
// nothing. Dispose is idempotent.
func (e *Engine) Dispose() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.cancelTimerLocked()
	e.session.Add(1)
	e.disposed = true
	e.deadline = time.Time{}
	e.callbacks = Callbacks{}
	e.remaining = 0
	e.expired = false
	e.paused = false

	state := e.stateLocked()
	session := e.session.Load()
	e.mu.Unlock()

	e.logger.Debug("countdown disposed")
	e.deliver(session, []notification{{event: Event{Kind: EventDisposed, At: e.clock.Now(), State: state}}})
}

// State returns the current snapshot.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// tick is the timer callback. It recomputes the remaining time, fires
// due warnings and expiry, and re-arms unless expired.
func (e *Engine) tick(generation uint64) {
	e.mu.Lock()
	if e.generation.Load() != generation || e.disposed || e.paused || e.expired || e.deadline.IsZero() {
		e.mu.Unlock()
		return
	}
	e.timer = nil

	now := e.clock.Now()
	e.remaining = remainingUntil(e.deadline, now)
	seconds := wholeSeconds(e.remaining)
	due := e.dueThresholdsLocked(seconds)
	for _, threshold := range due {
		e.fired[threshold] = true
	}
	e.lastSeconds = seconds

	if e.remaining == 0 {
		e.expired = true
	} else {
		e.armLocked()
	}

	state := e.stateLocked()
	callbacks := e.callbacks
	// Warnings and expiry go first so an observer that reacts to the
	// tick event (for example by pausing) cannot suppress them.
	var pending []notification
	for _, threshold := range due {
		notify := func() {}
		if callbacks.OnWarning != nil {
			notify = func() { callbacks.OnWarning(threshold) }
		}
		pending = append(pending, notification{
			event:    Event{Kind: EventWarning, At: now, Threshold: threshold, State: state},
			callback: notify,
		})
	}
	if e.expired {
		pending = append(pending, notification{
			event:    Event{Kind: EventExpired, At: now, State: state},
			callback: callbacks.OnExpire,
		})
	}
	pending = append(pending, notification{event: Event{Kind: EventTick, At: now, State: state}})
	session := e.session.Load()
	e.mu.Unlock()

	for _, threshold := range due {
		e.logger.Debug("countdown warning threshold reached", "threshold_seconds", threshold)
	}
	if state.IsExpired {
		e.logger.Debug("countdown expired", "deadline", state.Deadline)
	}
	e.deliver(session, pending)
}

// dueThresholdsLocked returns the unfired thresholds that the
// observation at seconds triggers, in descending order.
func (e *Engine) dueThresholdsLocked(seconds int) []int {
	var due []int
	for _, threshold := range warningThresholds {
		if e.fired[threshold] {
			continue
		}
		switch e.warningMode {
		case WarningCatchUp:
			if seconds <= threshold && threshold <= e.lastSeconds {
				due = append(due, threshold)
			}
		default:
			if seconds == threshold {
				due = append(due, threshold)
			}
		}
	}
	return due
}

// armLocked schedules the next tick under the current generation.
func (e *Engine) armLocked() {
	generation := e.generation.Load()
	e.timer = e.clock.AfterFunc(TickInterval, func() { e.tick(generation) })
}

// cancelTimerLocked stops the pending tick and invalidates any tick
// armed under the current generation. Called first by every
// transition that ends a ticking period.
func (e *Engine) cancelTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.generation.Add(1)
}

func (e *Engine) stateLocked() State {
	phase := PhaseRunning
	switch {
	case e.deadline.IsZero():
		phase = PhaseInert
	case e.expired:
		phase = PhaseExpired
	case e.paused:
		phase = PhasePaused
	}
	return State{
		Phase:         phase,
		Deadline:      e.deadline,
		Remaining:     e.remaining,
		IsExpired:     e.expired,
		Urgency:       Classify(e.remaining),
		FormattedTime: FormatRemaining(e.remaining),
		IsPaused:      e.paused,
	}
}

// deliver runs queued callbacks and observer events in order, stopping
// as soon as the session they were queued under is superseded.
func (e *Engine) deliver(session uint64, pending []notification) {
	for _, item := range pending {
		if e.session.Load() != session {
			return
		}
		if item.callback != nil {
			item.callback()
			if e.session.Load() != session {
				return
			}
		}
		for _, observer := range e.observers {
			observer.Observe(item.event)
		}
	}
}
