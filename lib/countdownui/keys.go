// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package countdownui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the countdown view.
type KeyMap struct {
	Pause  key.Binding
	Resume key.Binding
	Quit   key.Binding
}

// ShortHelp implements help.KeyMap.
func (keys KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.Pause, keys.Resume, keys.Quit}
}

// FullHelp implements help.KeyMap.
func (keys KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{keys.ShortHelp()}
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Pause: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause"),
	),
	Resume: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "resume"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
