// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reservation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/ticketclock/lib/countdown"
)

// Status is the lifecycle state of a ticket.
type Status string

const (
	// StatusReserved: held for the user until expires_at, awaiting
	// payment.
	StatusReserved Status = "reserved"
	StatusPaid     Status = "paid"
	// StatusExpired: the hold lapsed and the ticket was released.
	StatusExpired Status = "expired"
)

// EventSummary is the event embedded in a ticket record.
type EventSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	StartTime string `json:"start_time"`
	VenueName string `json:"venue_name"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
}

// Ticket is a reservation record.
type Ticket struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	EventID   string       `json:"event_id"`
	Status    Status       `json:"status"`
	ExpiresAt *string      `json:"expires_at"`
	PaidAt    *string      `json:"paid_at"`
	CreatedAt string       `json:"created_at"`
	Event     EventSummary `json:"event"`
}

// Parse strips JSONC comments and trailing commas from data and
// decodes the ticket record.
func Parse(data []byte) (*Ticket, error) {
	var ticket Ticket
	if err := json.Unmarshal(jsonc.ToJSON(data), &ticket); err != nil {
		return nil, fmt.Errorf("parsing ticket record: %w", err)
	}
	return &ticket, nil
}

// ReadFile reads and parses a ticket record file.
func ReadFile(path string) (*Ticket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	ticket, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ticket, nil
}

// Validate checks the fields the countdown relies on: a UUID ticket
// ID and a known status. An unparseable expires_at is not an error;
// it only means the ticket has no countdown.
func (ticket *Ticket) Validate() error {
	var errs []error
	if ticket.ID == "" {
		errs = append(errs, errors.New("id is required"))
	} else if _, err := uuid.Parse(ticket.ID); err != nil {
		errs = append(errs, fmt.Errorf("id %q is not a UUID", ticket.ID))
	}
	switch ticket.Status {
	case StatusReserved, StatusPaid, StatusExpired:
	case "":
		errs = append(errs, errors.New("status is required"))
	default:
		errs = append(errs, fmt.Errorf("unknown status %q", ticket.Status))
	}
	return errors.Join(errs...)
}

// Deadline returns the hold expiration for a reserved ticket. The
// second result is false for other statuses and for a missing or
// unparseable expires_at.
func (ticket *Ticket) Deadline() (time.Time, bool) {
	if ticket.Status != StatusReserved || ticket.ExpiresAt == nil {
		return time.Time{}, false
	}
	return countdown.ParseDeadline(*ticket.ExpiresAt)
}

// Title returns the event title, or the ticket ID when the record has
// no embedded event.
func (ticket *Ticket) Title() string {
	if ticket.Event.Title != "" {
		return ticket.Event.Title
	}
	return "ticket " + ticket.ID
}

// Describe returns a one-line summary relative to now, for example
// "Summer Gala: reserved, hold expires 2 minutes from now".
func (ticket *Ticket) Describe(now time.Time) string {
	switch ticket.Status {
	case StatusPaid:
		return ticket.Title() + ": paid"
	case StatusExpired:
		return ticket.Title() + ": reservation expired"
	}

	deadline, ok := ticket.Deadline()
	if !ok {
		return ticket.Title() + ": reserved, no expiry set"
	}
	if !deadline.After(now) {
		return fmt.Sprintf("%s: reserved, hold expired %s", ticket.Title(), humanize.RelTime(deadline, now, "ago", "from now"))
	}
	return fmt.Sprintf("%s: reserved, hold expires %s", ticket.Title(), humanize.RelTime(deadline, now, "ago", "from now"))
}
