// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the injectable time source used by the
// countdown engine and the toast store.
//
// Components hold a Clock field instead of calling time.Now or
// time.AfterFunc directly:
//
//	engine := countdown.New(countdown.Options{Clock: clock.Real()})
//
// In tests:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	engine := countdown.New(countdown.Options{Clock: fake})
//	engine.Start(fake.Now().Add(2*time.Minute), countdown.Callbacks{})
//	fake.Advance(65 * time.Second) // runs 65 ticks, one per second
//
// # Stepping
//
// FakeClock.Advance does not jump straight to the target time. It
// moves to the earliest pending deadline, runs that callback with
// Now() reporting the deadline, and repeats until nothing is due. A
// callback that re-arms itself for one period later therefore fires
// once per period across a single large Advance, which is how a
// periodic tick behaves against a real clock.
package clock
