// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// Fake returns a FakeClock set to initial. Time stands still until
// Advance is called.
//
// FakeClock is safe for concurrent use by multiple goroutines.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock is a deterministic Clock for tests. Callbacks registered
// with AfterFunc run synchronously inside Advance, in deadline order.
// Do not call Advance from inside a callback.
type FakeClock struct {
	mu       sync.Mutex
	current  time.Time
	sequence uint64
	waiters  []*fakeWaiter
}

type fakeWaiter struct {
	deadline time.Time

	// sequence breaks ties between waiters with equal deadlines so
	// they fire in registration order.
	sequence uint64

	callback func()

	// done is set once the waiter fired or was stopped.
	done bool
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// AfterFunc schedules f at Now()+d. If d <= 0, f runs before AfterFunc
// returns and the returned Timer is already spent.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	if d <= 0 {
		f()
		return &Timer{stopFunc: func() bool { return false }}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sequence++
	waiter := &fakeWaiter{
		deadline: c.current.Add(d),
		sequence: c.sequence,
		callback: f,
	}
	c.waiters = append(c.waiters, waiter)

	return &Timer{
		stopFunc: func() bool {
			c.mu.Lock()
			defer c.mu.Unlock()
			if waiter.done {
				return false
			}
			waiter.done = true
			return true
		},
	}
}

// Advance moves the clock forward by d, running every callback whose
// deadline falls within the new time. Each callback observes Now()
// equal to its own deadline; callbacks registered while advancing
// fire too if their deadline is also within range. When Advance
// returns, Now() is the original time plus d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.current.Add(d)
	c.mu.Unlock()

	for {
		waiter := c.popDue(target)
		if waiter == nil {
			break
		}
		waiter.callback()
	}

	c.mu.Lock()
	if c.current.Before(target) {
		c.current = target
	}
	c.mu.Unlock()
}

// popDue removes and returns the earliest live waiter due at or before
// target, moving the clock to its deadline. Returns nil when nothing
// is due.
func (c *FakeClock) popDue(target time.Time) *fakeWaiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	var next *fakeWaiter
	live := c.waiters[:0]
	for _, waiter := range c.waiters {
		if waiter.done {
			continue
		}
		live = append(live, waiter)
		if waiter.deadline.After(target) {
			continue
		}
		if next == nil || waiter.deadline.Before(next.deadline) ||
			(waiter.deadline.Equal(next.deadline) && waiter.sequence < next.sequence) {
			next = waiter
		}
	}
	c.waiters = live

	if next == nil {
		return nil
	}
	next.done = true
	if next.deadline.After(c.current) {
		c.current = next.deadline
	}
	return next
}

// PendingCount returns the number of callbacks that are scheduled and
// neither fired nor stopped. Tests use it to assert that a component
// released its timer.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, waiter := range c.waiters {
		if !waiter.done {
			count++
		}
	}
	return count
}
