// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventlog records countdown engine events as a CBOR sequence.
//
// A [Writer] is a countdown.Observer. Each event becomes one [Record]
// appended to the underlying stream; plain ticks are skipped unless
// IncludeTicks is set, since a two-minute hold would otherwise produce
// a hundred near-identical records. [Read] decodes a log back into
// records and [Dump] prints it in CBOR diagnostic notation.
package eventlog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bureau-foundation/ticketclock/lib/codec"
	"github.com/bureau-foundation/ticketclock/lib/countdown"
)

// Record is the on-disk form of a countdown.Event.
type Record struct {
	Kind        countdown.EventKind `cbor:"kind"`
	At          time.Time           `cbor:"at"`
	Threshold   int                 `cbor:"threshold,omitempty"`
	Phase       countdown.Phase     `cbor:"phase"`
	Deadline    *time.Time          `cbor:"deadline,omitempty"`
	RemainingMS int64               `cbor:"remaining_ms"`
	Urgency     countdown.Urgency   `cbor:"urgency"`
	Paused      bool                `cbor:"paused,omitempty"`
}

// NewRecord converts an engine event.
func NewRecord(event countdown.Event) Record {
	record := Record{
		Kind:        event.Kind,
		At:          event.At,
		Threshold:   event.Threshold,
		Phase:       event.State.Phase,
		RemainingMS: event.State.RemainingMilliseconds(),
		Urgency:     event.State.Urgency,
		Paused:      event.State.IsPaused,
	}
	if !event.State.Deadline.IsZero() {
		deadline := event.State.Deadline
		record.Deadline = &deadline
	}
	return record
}

// Options configures a Writer.
type Options struct {
	// IncludeTicks records EventTick events too.
	IncludeTicks bool

	// Logger receives the first write failure. Defaults to discarding.
	Logger *slog.Logger
}

// Writer appends engine events to a CBOR stream. It is safe for
// concurrent use.
type Writer struct {
	mu           sync.Mutex
	w            io.Writer
	closer       io.Closer
	includeTicks bool
	logger       *slog.Logger
	err          error
}

// NewWriter returns a Writer encoding to w. Close does not close w.
func NewWriter(w io.Writer, options Options) *Writer {
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}
	return &Writer{
		w:            w,
		includeTicks: options.IncludeTicks,
		logger:       options.Logger,
	}
}

// Create opens path for appending, creating it if needed, and returns
// a Writer that closes the file on Close.
func Create(path string, options Options) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	writer := NewWriter(file, options)
	writer.closer = file
	return writer, nil
}

// Observe implements countdown.Observer. Each record is encoded in
// full and written with a single Write. After the first error further
// events are dropped; the error is available from Err.
func (w *Writer) Observe(event countdown.Event) {
	if event.Kind == countdown.EventTick && !w.includeTicks {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return
	}
	data, err := codec.Marshal(NewRecord(event))
	if err == nil {
		_, err = w.w.Write(data)
	}
	if err != nil {
		w.err = fmt.Errorf("writing %s event: %w", event.Kind, err)
		w.logger.Error("event log write failed", "kind", string(event.Kind), "error", err)
	}
}

// Err returns the first write error.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Close closes the file opened by Create and returns the first write
// error, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var closeErr error
	if w.closer != nil {
		closeErr = w.closer.Close()
		w.closer = nil
	}
	return errors.Join(w.err, closeErr)
}

// Read decodes every record in r. A truncated final record returns the
// records before it together with the error.
func Read(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading event log: %w", err)
	}
	var records []Record
	for len(data) > 0 {
		var record Record
		rest, err := codec.UnmarshalFirst(data, &record)
		if err != nil {
			return records, fmt.Errorf("decoding record %d: %w", len(records), err)
		}
		records = append(records, record)
		data = rest
	}
	return records, nil
}

// ReadFile reads the event log at path.
func ReadFile(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	defer file.Close()
	return Read(file)
}

// Dump writes each record in r as one line of CBOR diagnostic
// notation.
func Dump(w io.Writer, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading event log: %w", err)
	}
	for index := 0; len(data) > 0; index++ {
		notation, rest, err := codec.DiagnoseFirst(data)
		if err != nil {
			return fmt.Errorf("record %d: %w", index, err)
		}
		if _, err := fmt.Fprintln(w, notation); err != nil {
			return err
		}
		data = rest
	}
	return nil
}
