// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock is the time source for every component that schedules work.
// Production code injects Real(); tests inject Fake() and move time
// with Advance.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc calls f once after d elapses and returns a Timer that
	// can cancel the pending call. With a real clock f runs on its own
	// goroutine; with a fake clock f runs inside Advance. If d <= 0,
	// f runs immediately (real: new goroutine, fake: synchronously).
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a pending AfterFunc call.
type Timer struct {
	stopFunc func() bool
}

// Stop cancels the pending call. Returns true if the call was still
// pending, false if it already ran or was stopped before.
func (t *Timer) Stop() bool { return t.stopFunc() }
