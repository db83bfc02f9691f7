// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/ticketclock/lib/config"
	"github.com/bureau-foundation/ticketclock/lib/countdown"
	"github.com/bureau-foundation/ticketclock/lib/countdownui"
	"github.com/bureau-foundation/ticketclock/lib/notify"
	"github.com/bureau-foundation/ticketclock/lib/process"
)

// session is one countdown run: a resolved deadline plus everything
// that observes it.
type session struct {
	app       *app
	cfg       *config.Config
	flags     flags
	logger    *slog.Logger
	observers []countdown.Observer
	deadline  time.Time
	header    string
}

func (s *session) newEngine(extra countdown.Observer) *countdown.Engine {
	return countdown.New(countdown.Options{
		Clock:       s.app.clock,
		Logger:      s.logger,
		Observers:   append(append([]countdown.Observer(nil), s.observers...), extra),
		WarningMode: countdown.WarningMode(s.cfg.Countdown.WarningMode),
	})
}

func (s *session) alertOptions() notify.AlertOptions {
	durations := s.cfg.Notifications.Durations
	return notify.AlertOptions{
		Enabled:           s.cfg.Notifications.Enabled && !s.flags.noWarnings,
		ThresholdDuration: durations.Warning,
		ExpiredDuration:   durations.Error,
	}
}

// runHeadless prints engine events to stdout until the hold expires
// (exit status 2), the countdown turns out inert (status 0), or ctx is
// cancelled.
func (s *session) runHeadless(ctx context.Context) error {
	printer := &eventPrinter{
		w:        s.app.stdout,
		json:     s.flags.jsonOutput,
		warnings: s.cfg.Notifications.Enabled && !s.flags.noWarnings,
	}
	engine := s.newEngine(printer)
	defer engine.Dispose()

	// Headless output is the printer; alerts only log.
	alerts := notify.NewCountdownAlerts(nil, s.logger, notify.AlertOptions{})
	expired := make(chan struct{})
	state := engine.Start(s.deadline, alerts.Callbacks(func() { close(expired) }))
	if state.Phase == countdown.PhaseInert {
		return nil
	}

	select {
	case <-expired:
		return &process.ExitError{Code: exitExpired}
	case <-ctx.Done():
		s.logger.Info("countdown interrupted", "remaining", engine.State().Remaining)
		return nil
	}
}

// runInteractive runs the terminal UI until the user quits.
func (s *session) runInteractive(ctx context.Context) error {
	durations := s.cfg.Notifications.Durations
	store := notify.NewStore(s.app.clock, s.logger, notify.Durations{
		Success: durations.Success,
		Error:   durations.Error,
		Info:    durations.Info,
		Warning: durations.Warning,
	})
	defer store.Close()

	bridge := countdownui.NewBridge()
	defer bridge.Close()

	engine := s.newEngine(bridge)
	defer engine.Dispose()

	alerts := notify.NewCountdownAlerts(store, s.logger, s.alertOptions())
	engine.Start(s.deadline, alerts.Callbacks(func() {
		store.Post(notify.LevelError, notify.MessageReservationExpired)
	}))

	size, err := countdownui.ParseSize(s.cfg.Display.Size)
	if err != nil {
		return Validation("%w", err)
	}
	model := countdownui.NewModel(countdownui.Options{
		Controller: engine,
		Bridge:     bridge,
		Toasts:     store,
		Header:     s.header,
		Size:       size,
	})
	return s.app.runProgram(ctx, model, s.app.stdout)
}

// eventPrinter is the headless countdown.Observer. Text mode prints
// one human-readable line per event; JSON mode prints one object per
// event.
type eventPrinter struct {
	mu       sync.Mutex
	w        io.Writer
	json     bool
	warnings bool
}

// eventLine is the JSON shape of one headless event.
type eventLine struct {
	Event     countdown.EventKind `json:"event"`
	At        time.Time           `json:"at"`
	Threshold int                 `json:"threshold,omitempty"`
	Message   string              `json:"message,omitempty"`
	State     countdown.State     `json:"state"`
}

func (p *eventPrinter) Observe(event countdown.Event) {
	// Teardown resets the engine to inert; its state is not the
	// countdown's outcome.
	if event.Kind == countdown.EventDisposed {
		return
	}
	message := p.message(event)
	if event.Kind == countdown.EventWarning && message == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.json {
		data, err := json.Marshal(eventLine{
			Event:     event.Kind,
			At:        event.At,
			Threshold: event.Threshold,
			Message:   message,
			State:     event.State,
		})
		if err == nil {
			fmt.Fprintf(p.w, "%s\n", data)
		}
		return
	}

	state := event.State
	switch event.Kind {
	case countdown.EventStarted:
		if state.Phase == countdown.PhaseInert {
			fmt.Fprintln(p.w, "no active countdown")
			return
		}
		fmt.Fprintf(p.w, "started  %s %s\n", state.FormattedTime, state.Urgency)
	case countdown.EventTick:
		fmt.Fprintf(p.w, "%s %s\n", state.FormattedTime, state.Urgency)
	case countdown.EventWarning:
		fmt.Fprintf(p.w, "warning  %s\n", message)
	case countdown.EventExpired:
		if message == "" {
			fmt.Fprintln(p.w, "expired")
			return
		}
		fmt.Fprintf(p.w, "expired  %s\n", message)
	case countdown.EventPaused, countdown.EventResumed:
		fmt.Fprintf(p.w, "%s  %s\n", event.Kind, state.FormattedTime)
	}
}

// message returns the notification text for warning and expiry
// events, empty when warnings are suppressed.
func (p *eventPrinter) message(event countdown.Event) string {
	if !p.warnings {
		return ""
	}
	switch event.Kind {
	case countdown.EventWarning:
		_, message, _ := notify.WarningAlert(event.Threshold)
		return message
	case countdown.EventExpired:
		return notify.MessageHoldExpired
	}
	return ""
}
