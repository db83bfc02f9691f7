// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package countdown implements the reservation hold countdown: given
// the absolute time at which a ticket reservation expires, an [Engine]
// keeps a live view of the time remaining, classifies it into an
// [Urgency] level, fires one-shot warnings at 60, 30 and 10 seconds
// remaining, and fires an expiration callback exactly once.
//
// Remaining time is always recomputed from the absolute deadline and
// the injected [clock.Clock], never decremented. Missed or delayed
// ticks therefore never accumulate drift, and pausing only stops
// observation: after [Engine.Resume] the remaining time reflects the
// wall clock, not the moment of pausing.
//
// The engine is a four-phase state machine:
//
//	inert   --Start(deadline)-->  running
//	running --Pause-->            paused
//	paused  --Resume-->           running
//	running --remaining == 0-->   expired
//
// Start with a different deadline re-enters running (or inert for the
// zero deadline) from any phase, clearing warning history. Each engine
// owns at most one pending timer; Pause, Start and Dispose cancel it
// before touching any other state, so no tick of a superseded
// countdown ever reaches a callback.
//
// Callbacks passed to [Engine.Start] carry the exactly-once contract.
// [Observer]s registered in [Options] additionally receive every
// transition as an [Event], which is how the terminal UI and the event
// log follow the engine.
package countdown
