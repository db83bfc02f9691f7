// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"io"
	"log/slog"
	"time"

	"github.com/bureau-foundation/ticketclock/lib/countdown"
)

// Alert messages shown while a reservation hold runs out.
const (
	MessageOneMinute   = "1 minute remaining to complete payment!"
	MessageThirty      = "30 seconds remaining!"
	MessageTen         = "Only 10 seconds left!"
	MessageHoldExpired = "Time expired! Your reservation has been released."

	// MessageReservationExpired is posted by the payment flow when the
	// hold it was waiting on lapses.
	MessageReservationExpired = "Your ticket reservation has expired"
)

// AlertOptions configures CountdownAlerts.
type AlertOptions struct {
	// Enabled turns toasts on. Disabled alerts still log.
	Enabled bool

	// ThresholdDuration is the lifetime of the 60/30/10 second toasts.
	ThresholdDuration time.Duration

	// ExpiredDuration is the lifetime of the expiry toast.
	ExpiredDuration time.Duration
}

// DefaultAlertOptions enables alerts with the standard lifetimes.
func DefaultAlertOptions() AlertOptions {
	return AlertOptions{
		Enabled:           true,
		ThresholdDuration: 4 * time.Second,
		ExpiredDuration:   5 * time.Second,
	}
}

// CountdownAlerts posts a toast for each countdown warning and for
// expiry.
type CountdownAlerts struct {
	store   *Store
	logger  *slog.Logger
	options AlertOptions
}

// NewCountdownAlerts creates alerts that post to store.
func NewCountdownAlerts(store *Store, logger *slog.Logger, options AlertOptions) *CountdownAlerts {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CountdownAlerts{store: store, logger: logger, options: options}
}

// OnWarning handles a threshold warning. Thresholds other than 60, 30
// and 10 are logged but produce no toast.
func (alerts *CountdownAlerts) OnWarning(secondsRemaining int) {
	alerts.logger.Warn("reservation hold running out", "seconds_remaining", secondsRemaining)
	if !alerts.options.Enabled {
		return
	}

	level, message, ok := WarningAlert(secondsRemaining)
	if !ok {
		return
	}
	alerts.store.Add(level, message, alerts.options.ThresholdDuration)
}

// WarningAlert returns the toast level and message for a countdown
// threshold. The last result is false for thresholds with no alert.
func WarningAlert(secondsRemaining int) (Level, string, bool) {
	switch secondsRemaining {
	case 60:
		return LevelWarning, MessageOneMinute, true
	case 30:
		return LevelWarning, MessageThirty, true
	case 10:
		return LevelError, MessageTen, true
	}
	return "", "", false
}

// OnExpire handles expiry of the hold.
func (alerts *CountdownAlerts) OnExpire() {
	alerts.logger.Warn("reservation hold expired")
	if !alerts.options.Enabled {
		return
	}
	alerts.store.Add(LevelError, MessageHoldExpired, alerts.options.ExpiredDuration)
}

// Callbacks returns engine callbacks bound to these alerts. extraExpire,
// when non-nil, runs after the expiry toast is posted.
func (alerts *CountdownAlerts) Callbacks(extraExpire func()) countdown.Callbacks {
	return countdown.Callbacks{
		OnWarning: alerts.OnWarning,
		OnExpire: func() {
			alerts.OnExpire()
			if extraExpire != nil {
				extraExpire()
			}
		},
	}
}
