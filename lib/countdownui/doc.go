// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package countdownui renders a reservation countdown in the terminal.
//
// [Model] is a bubbletea model. It never polls the engine: a [Bridge]
// registered as a countdown.Observer forwards engine events into the
// program, and a notify.Store subscription forwards toast changes.
// Ticks that arrive faster than the program consumes them collapse into
// the newest one; warning, expiry and lifecycle events are always
// delivered, in order.
//
// The view shows the remaining time as M:SS coloured by urgency (green
// above a minute, yellow above 30 seconds, red with "(hurry!)" below),
// a grey "Expired" badge once the hold lapses, the live toasts, and a
// help line. With no active deadline it shows only a notice.
package countdownui
