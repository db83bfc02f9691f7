// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/ticketclock/lib/clock"
)

// Level is the visual category of a toast.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Valid reports whether level is one of the four known levels.
func (level Level) Valid() bool {
	switch level {
	case LevelSuccess, LevelError, LevelInfo, LevelWarning:
		return true
	}
	return false
}

// Toast is a transient user notification.
type Toast struct {
	ID      string
	Level   Level
	Message string

	// Duration is how long the toast stays before removing itself.
	// Zero means it stays until removed explicitly.
	Duration time.Duration

	CreatedAt time.Time
}

// Durations are the default lifetimes per level, used by Post.
type Durations struct {
	Success time.Duration
	Error   time.Duration
	Info    time.Duration
	Warning time.Duration
}

// DefaultDurations returns the standard toast lifetimes.
func DefaultDurations() Durations {
	return Durations{
		Success: 3 * time.Second,
		Error:   5 * time.Second,
		Info:    4 * time.Second,
		Warning: 4 * time.Second,
	}
}

// For returns the lifetime for level, falling back to the error
// lifetime for unknown levels.
func (durations Durations) For(level Level) time.Duration {
	switch level {
	case LevelSuccess:
		return durations.Success
	case LevelInfo:
		return durations.Info
	case LevelWarning:
		return durations.Warning
	default:
		return durations.Error
	}
}

// Store is an ordered list of live toasts. Safe for concurrent use.
type Store struct {
	clock     clock.Clock
	logger    *slog.Logger
	durations Durations

	mu          sync.Mutex
	toasts      []Toast
	timers      map[string]*clock.Timer
	subscribers map[int]chan struct{}
	nextID      int
	closed      bool
}

// NewStore creates an empty store. A nil logger discards output.
func NewStore(clk clock.Clock, logger *slog.Logger, durations Durations) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		clock:       clk,
		logger:      logger,
		durations:   durations,
		timers:      make(map[string]*clock.Timer),
		subscribers: make(map[int]chan struct{}),
	}
}

// Post adds a toast with the default lifetime for its level.
func (s *Store) Post(level Level, message string) Toast {
	return s.Add(level, message, s.durations.For(level))
}

// Add appends a toast. A positive duration schedules its removal;
// zero or negative keeps it until Remove or Clear. Adding to a closed
// store returns the toast without storing it.
func (s *Store) Add(level Level, message string, duration time.Duration) Toast {
	if duration < 0 {
		duration = 0
	}
	toast := Toast{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		Duration:  duration,
		CreatedAt: s.clock.Now(),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return toast
	}
	s.toasts = append(s.toasts, toast)
	if duration > 0 {
		id := toast.ID
		s.timers[id] = s.clock.AfterFunc(duration, func() { s.expire(id) })
	}
	s.notifyLocked()
	s.mu.Unlock()

	s.logger.Debug("toast added",
		"id", toast.ID,
		"level", string(level),
		"duration", duration,
	)
	return toast
}

// Remove deletes the toast with the given ID. Returns false if no such
// toast is present.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id)
}

// expire is the auto-removal callback.
func (s *Store) expire(id string) {
	s.mu.Lock()
	removed := s.removeLocked(id)
	s.mu.Unlock()
	if removed {
		s.logger.Debug("toast expired", "id", id)
	}
}

func (s *Store) removeLocked(id string) bool {
	for index, toast := range s.toasts {
		if toast.ID != id {
			continue
		}
		s.toasts = append(s.toasts[:index], s.toasts[index+1:]...)
		if timer, ok := s.timers[id]; ok {
			timer.Stop()
			delete(s.timers, id)
		}
		s.notifyLocked()
		return true
	}
	return false
}

// Clear removes every toast and cancels pending removals.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Store) clearLocked() {
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	if len(s.toasts) > 0 {
		s.toasts = nil
		s.notifyLocked()
	}
}

// List returns the live toasts, oldest first.
func (s *Store) List() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Toast(nil), s.toasts...)
}

// Subscribe returns a channel that receives a value after the toast
// list changes, and a function that ends the subscription. Changes
// coalesce: a slow reader sees one pending signal, then reads List.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	channel := make(chan struct{}, 1)
	id := s.nextID
	s.nextID++
	s.subscribers[id] = channel

	return channel, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) notifyLocked() {
	for _, channel := range s.subscribers {
		select {
		case channel <- struct{}{}:
		default:
		}
	}
}

// Close clears the store and cancels every pending removal. Later Add
// calls store nothing.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.clearLocked()
	s.closed = true
}
