// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package countdown

import (
	"encoding/json"
	"time"
)

// Phase is the engine's state-machine state.
type Phase string

const (
	// PhaseInert: no deadline. Nothing ticks and no callback fires.
	PhaseInert Phase = "inert"
	// PhaseRunning: ticking once per second toward the deadline.
	PhaseRunning Phase = "running"
	// PhasePaused: a deadline is set but ticking is suspended.
	PhasePaused Phase = "paused"
	// PhaseExpired: the deadline passed. Terminal until the next Start.
	PhaseExpired Phase = "expired"
)

// State is a snapshot of the engine.
type State struct {
	Phase Phase

	// Deadline is the absolute expiration time, zero when inert.
	Deadline time.Time

	// Remaining is max(0, Deadline - now) as of the latest tick or
	// immediate recomputation.
	Remaining time.Duration

	// IsExpired is true once Remaining reached zero for the current
	// deadline. Always false when inert.
	IsExpired bool

	Urgency       Urgency
	FormattedTime string
	IsPaused      bool
}

// RemainingMilliseconds returns Remaining in whole milliseconds.
func (s State) RemainingMilliseconds() int64 {
	return s.Remaining.Milliseconds()
}

// MarshalJSON renders the state in the wire shape the presentation
// layer consumes.
func (s State) MarshalJSON() ([]byte, error) {
	type wire struct {
		Phase         Phase   `json:"phase"`
		Deadline      *string `json:"deadline,omitempty"`
		RemainingMS   int64   `json:"remaining_ms"`
		IsExpired     bool    `json:"is_expired"`
		UrgencyLevel  Urgency `json:"urgency_level"`
		FormattedTime string  `json:"formatted_time"`
		IsPaused      bool    `json:"is_paused"`
	}
	out := wire{
		Phase:         s.Phase,
		RemainingMS:   s.RemainingMilliseconds(),
		IsExpired:     s.IsExpired,
		UrgencyLevel:  s.Urgency,
		FormattedTime: s.FormattedTime,
		IsPaused:      s.IsPaused,
	}
	if !s.Deadline.IsZero() {
		deadline := s.Deadline.Format(time.RFC3339Nano)
		out.Deadline = &deadline
	}
	return json.Marshal(out)
}
