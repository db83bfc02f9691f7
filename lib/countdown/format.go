// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package countdown

import (
	"fmt"
	"time"
)

// FormatRemaining renders a duration as minutes and zero-padded
// seconds, truncating sub-second precision: 125s is "2:05", 9s is
// "0:09", zero is "0:00". Minutes are not padded and not capped, so an
// hour renders as "60:00". Negative durations render as "0:00".
func FormatRemaining(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	totalSeconds := int64(remaining / time.Second)
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}

// wholeSeconds is floor(remaining / 1s), the value warning thresholds
// are compared against.
func wholeSeconds(remaining time.Duration) int {
	return int(remaining / time.Second)
}

// remainingUntil is max(0, deadline - now).
func remainingUntil(deadline, now time.Time) time.Duration {
	remaining := deadline.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
