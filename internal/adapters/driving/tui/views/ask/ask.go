// Package ask provides the question view for the TUI.
package ask

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driving"
)

// View is the question input with the ranked answer list below it.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.AnswerList
	statusbar *status.Bar

	retrieval driving.RetrievalService
	ctx       context.Context
	k         int

	width      int
	height     int
	ready      bool
	err        error
	asked      string
	focusInput bool // true while typing, false while browsing answers
}

// NewView creates a new ask view. k of 0 lets the service pick its default.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	retrieval driving.RetrievalService,
	k int,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQueryInput(s),
		list:       list.NewAnswerList(s),
		statusbar:  status.NewBar(s, km),
		retrieval:  retrieval,
		ctx:        context.Background(),
		k:          k,
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context used for retrieval calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetK sets the number of answers requested per question.
func (v *View) SetK(k int) {
	v.k = k
}

// K returns the number of answers requested per question.
func (v *View) K() int {
	return v.k
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.handleAnswerCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.statusbar, cmd = v.statusbar.Update(msg)
	cmds = append(cmds, cmd)
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return v, tea.Batch(cmds...)
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusInput {
		switch {
		case key.Matches(msg, v.keymap.Ask):
			return v, v.submit()
		case key.Matches(msg, v.keymap.Back):
			if v.list.IsEmpty() {
				return v, func() tea.Msg { return messages.Quit{} }
			}
			v.focusInput = false
			v.input.Blur()
			v.input.SetValue(v.asked)
			return v, nil
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keymap.Open):
		item := v.list.SelectedItem()
		if item == nil {
			return v, nil
		}
		selected := *item
		return v, func() tea.Msg { return messages.ItemSelected{Item: selected} }
	case key.Matches(msg, v.keymap.NewQuestion):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	case key.Matches(msg, v.keymap.Back):
		v.focusInput = true
		return v, v.input.Focus()
	case key.Matches(msg, v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }
	case key.Matches(msg, v.keymap.Help):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewHelp} }
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

// submit starts answering the typed question. Blank input is ignored.
func (v *View) submit() tea.Cmd {
	query := v.input.Query()
	if query == "" {
		return nil
	}
	v.err = nil
	v.asked = query
	v.focusInput = false
	v.input.Blur()
	return tea.Batch(v.statusbar.StartAsking(), v.answer(query))
}

func (v *View) answer(query string) tea.Cmd {
	retrieval, ctx, k := v.retrieval, v.ctx, v.k
	return func() tea.Msg {
		if retrieval == nil {
			return messages.AnswerCompleted{Query: query, Err: ErrNoRetrievalService}
		}
		items, err := retrieval.Answer(ctx, query, k)
		return messages.AnswerCompleted{Query: query, Items: items, Err: err}
	}
}

func (v *View) handleAnswerCompleted(msg messages.AnswerCompleted) {
	if msg.Query != v.asked {
		return
	}
	if msg.Err != nil {
		v.list.SetItems(nil)
		v.setError(msg.Err)
		v.focusInput = true
		v.input.Focus()
		return
	}

	v.err = nil
	v.list.SetItems(msg.Items)
	v.statusbar.SetMessage("")
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(msg.Items))
	if len(msg.Items) == 0 {
		v.focusInput = true
		v.input.Focus()
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(describe(err))
}

// describe turns service errors into short status lines.
func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		return "type a question first"
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		return "embedding service unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	default:
		return err.Error()
	}
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections,
		v.styles.Title.Render("Storybank"), "",
		v.input.View(), "",
	)
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+describe(v.err)), "")
	}
	if v.asked != "" {
		sections = append(sections, v.list.View())
	}
	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current input text.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the input text.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Asked returns the last submitted question.
func (v *View) Asked() string {
	return v.asked
}

// Items returns the current answers.
func (v *View) Items() []domain.AnswerItem {
	return v.list.Items()
}

// SelectedIndex returns the index of the selected answer.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// StatusState returns the status bar state.
func (v *View) StatusState() status.State {
	return v.statusbar.State()
}

// SetStatusMessage shows a transient message in the status bar.
func (v *View) SetStatusMessage(message string) {
	v.statusbar.SetMessage(message)
}

// Reset returns the view to an empty, focused input.
func (v *View) Reset() tea.Cmd {
	v.focusInput = true
	v.input.SetValue("")
	v.list.SetItems(nil)
	v.err = nil
	v.asked = ""
	v.statusbar.Clear()
	return v.input.Focus()
}
