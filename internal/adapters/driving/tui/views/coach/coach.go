// Package coach provides the live coaching view for the TUI.
package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driving"
)

// ErrNoCoachService indicates that no coach service was provided.
var ErrNoCoachService = errors.New("coach service is required")

// View takes the question just heard and shows what to say for the
// current beat of the chosen story.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	statusbar *status.Bar

	coach driving.CoachService
	ctx   context.Context

	width  int
	height int
	ready  bool
	err    error
	heard  string
	cue    *domain.CoachCue
}

// NewView creates a new coach view.
func NewView(s *styles.Styles, km *keymap.KeyMap, coach driving.CoachService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	in := input.NewQueryInput(s)
	in.SetLabel("Heard: ")
	in.SetPlaceholder("Type the question you were asked...")

	return &View{
		styles:    s,
		keymap:    km,
		input:     in,
		statusbar: status.NewBar(s, km),
		coach:     coach,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context used for coach calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the coach view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.CoachCompleted:
		v.handleCoachCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.statusbar, cmd = v.statusbar.Update(msg)
	cmds = append(cmds, cmd)
	v.input, cmd = v.input.Update(msg)
	cmds = append(cmds, cmd)
	return v, tea.Batch(cmds...)
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Ask):
		return v, v.submit()
	case key.Matches(msg, v.keymap.NewStory):
		v.NewStory()
		return v, nil
	case key.Matches(msg, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewAsk} }
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit coaches the typed question and clears the input for the next one.
func (v *View) submit() tea.Cmd {
	heard := v.input.Query()
	if heard == "" {
		return nil
	}
	v.heard = heard
	v.input.SetValue("")
	return tea.Batch(v.statusbar.StartAsking(), v.ask(heard))
}

func (v *View) ask(heard string) tea.Cmd {
	coach, ctx := v.coach, v.ctx
	return func() tea.Msg {
		if coach == nil {
			return messages.CoachCompleted{Heard: heard, Err: ErrNoCoachService}
		}
		cue, err := coach.Coach(ctx, heard)
		return messages.CoachCompleted{Heard: heard, Cue: cue, Err: err}
	}
}

func (v *View) handleCoachCompleted(msg messages.CoachCompleted) {
	if msg.Heard != v.heard {
		return
	}
	switch {
	case errors.Is(msg.Err, domain.ErrNotAQuestion):
		// The cue on screen stays current.
		v.err = nil
		v.statusbar.SetState(status.StateCoached)
		v.statusbar.SetMessage("not a question, still on this beat")
		return
	case msg.Err != nil:
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.cue = msg.Cue
	v.statusbar.SetState(status.StateCoached)
	v.statusbar.SetMessage("")
}

// NewStory makes the coach forget the current story.
func (v *View) NewStory() {
	if v.coach != nil {
		v.coach.Reset()
	}
	v.cue = nil
	v.err = nil
	v.heard = ""
	v.statusbar.Clear()
	v.statusbar.SetMessage("ready for a new story")
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(describe(err))
}

// describe turns service errors into short status lines.
func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "no story matches"
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		return "embedding service unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	default:
		return err.Error()
	}
}

// View renders the coach view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections,
		v.styles.Title.Render("Storybank")+v.styles.Muted.Render("  coach"), "",
		v.input.View(), "",
	)
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+describe(v.err)), "")
	}
	if v.cue != nil {
		sections = append(sections, v.renderCue())
	}
	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderCue() string {
	cue := v.cue
	rule := v.styles.Muted.Render(strings.Repeat("─", max(v.width-4, 10)))
	text := lipgloss.NewStyle().Width(max(v.width-4, 20))

	story := cue.Topic
	if cue.Project != "" {
		story = strings.ToUpper(cue.Project) + ": " + cue.Topic
	}

	lines := []string{
		rule,
		v.styles.Title.Render(story),
		fmt.Sprintf("● %d/%d  %s  %s", cue.BeatNum, cue.Total, v.styles.Subtitle.Render(cue.Beat), v.styles.Score.Render("["+cue.Fit+"]")),
		rule,
		"",
	}
	for _, sentence := range cue.Sentences() {
		lines = append(lines, text.Render(v.styles.Normal.Render(sentence)), "")
	}
	if !cue.Generated {
		lines = append(lines, v.styles.Muted.Render("(quoted from notes)"))
	}
	if cue.Next != "" {
		lines = append(lines, v.styles.Muted.Render("↓ next: "+cue.Next))
	}
	lines = append(lines, rule)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Focus gives the input focus.
func (v *View) Focus() tea.Cmd {
	return v.input.Focus()
}

// Heard returns the last submitted question.
func (v *View) Heard() string {
	return v.heard
}

// Cue returns the cue on screen, if any.
func (v *View) Cue() *domain.CoachCue {
	return v.cue
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// StatusState returns the status bar state.
func (v *View) StatusState() status.State {
	return v.statusbar.State()
}

// StatusMessage returns the status bar message.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}
