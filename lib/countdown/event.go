// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package countdown

import "time"

// EventKind identifies an engine transition.
type EventKind string

const (
	EventStarted  EventKind = "started"
	EventTick     EventKind = "tick"
	EventWarning  EventKind = "warning"
	EventExpired  EventKind = "expired"
	EventPaused   EventKind = "paused"
	EventResumed  EventKind = "resumed"
	EventDisposed EventKind = "disposed"
)

// Event describes one engine transition. State is the engine state
// immediately after the transition.
type Event struct {
	Kind EventKind
	At   time.Time

	// Threshold is the warning threshold in seconds for EventWarning,
	// zero otherwise.
	Threshold int

	State State
}

// Observer receives engine events. Observe runs synchronously on the
// goroutine that caused the transition (the caller of Start, Pause,
// Resume or Dispose, or the timer goroutine for ticks) without the
// engine lock held, so it may call back into the engine. It must not
// block for long: ticks of the same engine wait for it.
type Observer interface {
	Observe(event Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(event Event)

// Observe calls f(event).
func (f ObserverFunc) Observe(event Event) { f(event) }
