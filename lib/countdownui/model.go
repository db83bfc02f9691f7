// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package countdownui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/ticketclock/lib/countdown"
	"github.com/bureau-foundation/ticketclock/lib/notify"
)

const (
	clockIcon     = "⏱"
	hurrySuffix   = "(hurry!)"
	expiredLabel  = "Expired"
	pausedLabel   = "paused"
	inertNotice   = "No active reservation countdown."
	toastBullet   = "▌"
	truncateTail  = "…"
	minimumLayout = 10
)

// Controller is the part of countdown.Engine the view drives.
type Controller interface {
	Pause()
	Resume()
	State() countdown.State
}

// Options configures a Model.
type Options struct {
	// Controller is paused and resumed by the key bindings and
	// supplies the initial state.
	Controller Controller

	// Bridge must be registered as an observer of the same engine.
	Bridge *Bridge

	// Toasts is optional. When set, its live toasts are listed under
	// the timer.
	Toasts *notify.Store

	// Header is shown above the timer, typically the event title.
	Header string

	Size Size

	// Theme defaults to DefaultTheme and KeyMap to DefaultKeyMap.
	Theme  *Theme
	KeyMap *KeyMap

	// Renderer defaults to lipgloss.DefaultRenderer().
	Renderer *lipgloss.Renderer
}

// engineEventsMsg carries events drained from the bridge.
type engineEventsMsg struct {
	events []countdown.Event
}

// toastsChangedMsg signals that the toast list changed.
type toastsChangedMsg struct{}

// Model is the bubbletea model of the countdown view.
type Model struct {
	controller Controller
	bridge     *Bridge

	toastStore  *notify.Store
	toastSignal <-chan struct{}
	unsubscribe func()
	toasts      []notify.Toast

	header   string
	size     Size
	theme    Theme
	keys     KeyMap
	help     help.Model
	renderer *lipgloss.Renderer
	state    countdown.State
	width    int
	quitting bool
}

// NewModel creates the view. It subscribes to the toast store
// immediately so no change between construction and Init is missed.
func NewModel(options Options) Model {
	theme := DefaultTheme
	if options.Theme != nil {
		theme = *options.Theme
	}
	keys := DefaultKeyMap
	if options.KeyMap != nil {
		keys = *options.KeyMap
	}
	renderer := options.Renderer
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}
	size := options.Size
	if size == "" {
		size = SizeMedium
	}

	helpModel := help.New()
	helpStyle := renderer.NewStyle().Foreground(theme.HelpText)
	helpModel.Styles.ShortKey = helpStyle.Bold(true)
	helpModel.Styles.ShortDesc = helpStyle
	helpModel.Styles.ShortSeparator = helpStyle
	helpModel.Styles.FullKey = helpStyle.Bold(true)
	helpModel.Styles.FullDesc = helpStyle
	helpModel.Styles.FullSeparator = helpStyle
	helpModel.Styles.Ellipsis = helpStyle

	model := Model{
		controller: options.Controller,
		bridge:     options.Bridge,
		toastStore: options.Toasts,
		header:     options.Header,
		size:       size,
		theme:      theme,
		keys:       keys,
		help:       helpModel,
		renderer:   renderer,
		state:      options.Controller.State(),
	}
	if options.Toasts != nil {
		model.toastSignal, model.unsubscribe = options.Toasts.Subscribe()
		model.toasts = options.Toasts.List()
	}
	model.syncKeys()
	return model
}

// State returns the engine state as of the last event the view saw.
func (model Model) State() countdown.State {
	return model.state
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	commands := []tea.Cmd{listenForEngineEvents(model.bridge)}
	if model.toastSignal != nil {
		commands = append(commands, listenForToastChanges(model.toastSignal))
	}
	return tea.Batch(commands...)
}

// listenForEngineEvents returns a tea.Cmd that blocks until the bridge
// has events, then delivers them as one engineEventsMsg.
func listenForEngineEvents(bridge *Bridge) tea.Cmd {
	return func() tea.Msg {
		for {
			events, ok := bridge.Wait()
			if !ok {
				return nil
			}
			if len(events) > 0 {
				return engineEventsMsg{events: events}
			}
		}
	}
}

// listenForToastChanges returns a tea.Cmd that blocks until the toast
// store signals a change.
func listenForToastChanges(signal <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-signal; !ok {
			return nil
		}
		return toastsChangedMsg{}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(message, model.keys.Quit):
			model.quitting = true
			if model.unsubscribe != nil {
				model.unsubscribe()
			}
			return model, tea.Quit
		case key.Matches(message, model.keys.Pause):
			model.controller.Pause()
		case key.Matches(message, model.keys.Resume):
			model.controller.Resume()
		}
		return model, nil

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.help.Width = message.Width
		return model, nil

	case engineEventsMsg:
		for _, event := range message.events {
			model.state = event.State
		}
		model.syncKeys()
		return model, listenForEngineEvents(model.bridge)

	case toastsChangedMsg:
		if model.toastStore != nil {
			model.toasts = model.toastStore.List()
		}
		return model, listenForToastChanges(model.toastSignal)
	}
	return model, nil
}

// syncKeys enables pause while running and resume while paused, so
// the help line offers only what applies.
func (model *Model) syncKeys() {
	model.keys.Pause.SetEnabled(model.state.Phase == countdown.PhaseRunning)
	model.keys.Resume.SetEnabled(model.state.Phase == countdown.PhasePaused)
}

// View implements tea.Model.
func (model Model) View() string {
	if model.quitting {
		return ""
	}

	var sections []string
	if model.header != "" {
		sections = append(sections, model.renderer.NewStyle().
			Bold(true).
			Foreground(model.theme.HeaderForeground).
			Render(model.header))
	}

	if model.state.Phase == countdown.PhaseInert {
		sections = append(sections, model.renderer.NewStyle().
			Foreground(model.theme.FaintText).
			Render(inertNotice))
	} else {
		sections = append(sections, model.renderTimer())
	}

	for _, toast := range model.toasts {
		sections = append(sections, model.renderToast(toast))
	}

	sections = append(sections, model.help.View(model.keys))
	return strings.Join(sections, "\n") + "\n"
}

// renderTimer draws the remaining time, or the expired badge, inside
// the size-dependent box.
func (model Model) renderTimer() string {
	var content string
	if model.state.IsExpired {
		badge := model.renderer.NewStyle().
			Foreground(model.theme.ExpiredForeground).
			Background(model.theme.ExpiredBackground).
			Padding(0, 1).
			Render(expiredLabel)
		content = clockIcon + " " + badge
	} else {
		color := model.theme.UrgencyColor(model.state.Urgency)
		timeStyle := model.renderer.NewStyle().Bold(true).Foreground(color)
		content = timeStyle.Render(clockIcon + " " + model.state.FormattedTime)
		if model.state.Urgency == countdown.UrgencyDanger {
			content += " " + model.renderer.NewStyle().Foreground(color).Render(hurrySuffix)
		}
		if model.state.IsPaused {
			content += " " + model.renderer.NewStyle().Foreground(model.theme.FaintText).Render(pausedLabel)
		}
	}

	vertical, horizontal := model.size.padding()
	box := model.renderer.NewStyle().Padding(vertical, horizontal)
	if model.size.bordered() {
		box = box.Border(lipgloss.RoundedBorder()).BorderForeground(model.theme.BorderColor)
	}
	return box.Render(content)
}

func (model Model) renderToast(toast notify.Toast) string {
	text := toast.Message
	if model.width > minimumLayout {
		text = ansi.Truncate(text, model.width-2, truncateTail)
	}
	accent := model.renderer.NewStyle().Foreground(model.theme.ToastColor(toast.Level))
	return accent.Render(toastBullet) + " " + model.renderer.NewStyle().Foreground(model.theme.NormalText).Render(text)
}
