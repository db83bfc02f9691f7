// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package countdown

import "time"

// Urgency is the coarse bucket of remaining time that drives visual
// treatment.
type Urgency string

const (
	// UrgencySafe: more than a minute left.
	UrgencySafe Urgency = "safe"
	// UrgencyWarning: more than 30 seconds and at most a minute left.
	UrgencyWarning Urgency = "warning"
	// UrgencyDanger: 30 seconds or less, including zero.
	UrgencyDanger Urgency = "danger"
)

// Both comparisons are strict: exactly 60s is warning, exactly 30s is
// danger.
const (
	safeAbove    = 60 * time.Second
	warningAbove = 30 * time.Second
)

// Classify returns the urgency level for a remaining duration.
func Classify(remaining time.Duration) Urgency {
	switch {
	case remaining > safeAbove:
		return UrgencySafe
	case remaining > warningAbove:
		return UrgencyWarning
	default:
		return UrgencyDanger
	}
}
