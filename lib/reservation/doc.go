// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package reservation reads the ticket reservation record that a
// countdown's deadline comes from.
//
// The record is the ticket JSON returned by the reservation service
// (id, status, expires_at, the event summary, ...). Files may carry
// // and /* */ comments and trailing commas, which is convenient for
// hand-written fixtures; they are stripped before decoding.
//
// Only a ticket in the reserved status has a live hold. [Ticket.Deadline]
// returns no deadline for paid or expired tickets, which leaves the
// countdown engine inert.
package reservation
