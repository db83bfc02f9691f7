// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package countdownui

import (
	"sync"

	"github.com/bureau-foundation/ticketclock/lib/countdown"
)

// Bridge is a countdown.Observer that queues engine events for a
// bubbletea program. Observe never blocks: consecutive ticks collapse
// into the newest, and every other event is queued in order. Safe for
// concurrent use.
type Bridge struct {
	mu      sync.Mutex
	pending []countdown.Event
	signal  chan struct{}
	done    chan struct{}
	closed  bool
}

// NewBridge creates an empty bridge.
func NewBridge() *Bridge {
	return &Bridge{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Observe implements countdown.Observer.
func (bridge *Bridge) Observe(event countdown.Event) {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	if bridge.closed {
		return
	}

	last := len(bridge.pending) - 1
	if event.Kind == countdown.EventTick && last >= 0 && bridge.pending[last].Kind == countdown.EventTick {
		bridge.pending[last] = event
	} else {
		bridge.pending = append(bridge.pending, event)
	}

	select {
	case bridge.signal <- struct{}{}:
	default:
	}
}

// Drain returns and clears the queued events, oldest first.
func (bridge *Bridge) Drain() []countdown.Event {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	events := bridge.pending
	bridge.pending = nil
	return events
}

// Wait blocks until events are queued or the bridge is closed, then
// drains. It returns false once the bridge is closed and empty.
func (bridge *Bridge) Wait() ([]countdown.Event, bool) {
	select {
	case <-bridge.signal:
	case <-bridge.done:
	}
	events := bridge.Drain()
	if len(events) > 0 {
		return events, true
	}
	select {
	case <-bridge.done:
		return nil, false
	default:
		// A signal raced with a previous Drain that already took the
		// events.
		return nil, true
	}
}

// Close wakes any Wait and drops later events. Idempotent.
func (bridge *Bridge) Close() {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	if bridge.closed {
		return
	}
	bridge.closed = true
	close(bridge.done)
}
