// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package countdownui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/ticketclock/lib/countdown"
	"github.com/bureau-foundation/ticketclock/lib/notify"
)

// Theme is the colour palette of the countdown view. All colours use
// lipgloss ANSI 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Urgency colours for the remaining time.
	Safe    lipgloss.Color
	Warning lipgloss.Color
	Danger  lipgloss.Color

	// The expired badge.
	ExpiredForeground lipgloss.Color
	ExpiredBackground lipgloss.Color

	// Toast accents, one per notify.Level.
	ToastSuccess lipgloss.Color
	ToastError   lipgloss.Color
	ToastInfo    lipgloss.Color
	ToastWarning lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
}

// UrgencyColor returns the colour for an urgency level.
func (theme Theme) UrgencyColor(urgency countdown.Urgency) lipgloss.Color {
	switch urgency {
	case countdown.UrgencySafe:
		return theme.Safe
	case countdown.UrgencyWarning:
		return theme.Warning
	case countdown.UrgencyDanger:
		return theme.Danger
	default:
		return theme.NormalText
	}
}

// ToastColor returns the accent colour for a toast level.
func (theme Theme) ToastColor(level notify.Level) lipgloss.Color {
	switch level {
	case notify.LevelSuccess:
		return theme.ToastSuccess
	case notify.LevelError:
		return theme.ToastError
	case notify.LevelInfo:
		return theme.ToastInfo
	case notify.LevelWarning:
		return theme.ToastWarning
	default:
		return theme.FaintText
	}
}

// DefaultTheme is the built-in dark-terminal colour scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	Safe:    lipgloss.Color("114"), // green
	Warning: lipgloss.Color("220"), // yellow/amber
	Danger:  lipgloss.Color("196"), // red

	ExpiredForeground: lipgloss.Color("250"),
	ExpiredBackground: lipgloss.Color("238"),

	ToastSuccess: lipgloss.Color("114"),
	ToastError:   lipgloss.Color("196"),
	ToastInfo:    lipgloss.Color("75"),
	ToastWarning: lipgloss.Color("220"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
}

// NewRenderer returns a lipgloss renderer for w pinned to profile.
// lipgloss re-detects the profile from the writer unless it is set
// explicitly, so tests pass termenv.Ascii to get uncoloured output.
func NewRenderer(w io.Writer, profile termenv.Profile) *lipgloss.Renderer {
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)
	return renderer
}
