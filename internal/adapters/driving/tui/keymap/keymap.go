// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	// Ask submits the question in the input.
	Ask key.Binding

	Up   key.Binding
	Down key.Binding

	// Open shows the selected answer in full.
	Open key.Binding

	// NewQuestion returns focus to the input from the answer list.
	NewQuestion key.Binding

	// PageUp and PageDown scroll the chunk view.
	PageUp   key.Binding
	PageDown key.Binding

	// Top and Bottom jump to the ends of the chunk view.
	Top    key.Binding
	Bottom key.Binding

	// Coach switches between answer search and coaching.
	Coach key.Binding

	// NewStory makes the coach forget the story being told.
	NewStory key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Ask: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "ask"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		NewQuestion: key.NewBinding(
			key.WithKeys("n", "/"),
			key.WithHelp("n", "new question"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", " "),
			key.WithHelp("pgdn", "page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		Coach: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "coach/search"),
		),
		NewStory: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "new story"),
		),
	}
}

// ShortHelp returns the bindings shown while typing a question.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Ask, k.Back}
}

// ResultsHelp returns the bindings shown while browsing answers.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.NewQuestion, k.Up, k.Open, k.Help, k.Quit}
}

// ChunkHelp returns the bindings shown in the chunk view.
func (k *KeyMap) ChunkHelp() []key.Binding {
	return []key.Binding{k.Up, k.PageDown, k.Top, k.Bottom, k.Back}
}

// CoachHelp returns the bindings shown in the coach view.
func (k *KeyMap) CoachHelp() []key.Binding {
	return []key.Binding{k.Ask, k.NewStory, k.Coach, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Ask, k.NewQuestion, k.Back},
		{k.Up, k.Down, k.Open},
		{k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Coach, k.NewStory},
		{k.Help, k.Quit},
	}
}
