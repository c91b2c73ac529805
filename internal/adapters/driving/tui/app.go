package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/views/ask"
	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/views/chunk"
	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/views/coach"
	"github.com/custodia-labs/storybank/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	askView   *ask.View
	chunkView *chunk.View
	coachView *coach.View // nil without a coach service

	// previousView is where the help view returns to.
	previousView messages.ViewType
	currentView  messages.ViewType

	err    error
	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// Option configures an App.
type Option func(*App)

// WithDefaultK sets the number of answers requested per question.
// Zero defers to the retrieval service default.
func WithDefaultK(k int) Option {
	return func(a *App) {
		a.askView.SetK(k)
	}
}

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports, opts ...Option) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	a := &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		help:        help.New(),
		askView:     ask.NewView(s, km, ports.Retrieval, 0),
		chunkView:   chunk.NewView(s, km, ports.Chunks),
		currentView: messages.ViewAsk,
	}
	if ports.Coach != nil {
		a.coachView = coach.NewView(s, km, ports.Coach)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.askView.WithContext(ctx)
	a.chunkView.WithContext(ctx)
	if a.coachView != nil {
		a.coachView.WithContext(ctx)
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("storybank"),
		a.askView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if a.coachView != nil && key.Matches(msg, a.keymap.Coach) {
			switch a.currentView {
			case messages.ViewAsk:
				a.currentView = messages.ViewCoach
				return a, a.coachView.Focus()
			case messages.ViewCoach:
				a.currentView = messages.ViewAsk
				return a, nil
			}
		}
		switch a.currentView {
		case messages.ViewAsk:
			a.askView, cmd = a.askView.Update(msg)
		case messages.ViewCoach:
			a.coachView, cmd = a.coachView.Update(msg)
		case messages.ViewChunk:
			a.chunkView, cmd = a.chunkView.Update(msg)
		case messages.ViewHelp:
			a.currentView = a.previousView
		}
		return a, cmd

	case messages.AnswerCompleted:
		a.askView, cmd = a.askView.Update(msg)
		a.err = a.askView.Err()
		return a, cmd

	case messages.CoachCompleted:
		if a.coachView == nil {
			return a, nil
		}
		a.coachView, cmd = a.coachView.Update(msg)
		a.err = a.coachView.Err()
		return a, cmd

	case messages.ItemSelected:
		a.currentView = messages.ViewChunk
		return a, a.chunkView.SetItem(msg.Item)

	case messages.ChunkLoaded:
		a.chunkView, cmd = a.chunkView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		if msg.View == messages.ViewHelp {
			a.previousView = a.currentView
		}
		a.currentView = msg.View
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		switch a.currentView {
		case messages.ViewAsk:
			a.askView, cmd = a.askView.Update(msg)
		case messages.ViewChunk:
			a.chunkView, cmd = a.chunkView.Update(msg)
		case messages.ViewCoach:
			a.coachView, cmd = a.coachView.Update(msg)
		case messages.ViewHelp:
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Spinner ticks and cursor blinks carry the ID of their owner, so
	// both question views can see them.
	a.askView, cmd = a.askView.Update(msg)
	if a.coachView == nil {
		return a, cmd
	}
	var coachCmd tea.Cmd
	a.coachView, coachCmd = a.coachView.Update(msg)
	return a, tea.Batch(cmd, coachCmd)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChunk:
		return a.chunkView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewCoach:
		return a.coachView.View()
	default:
		return a.askView.View()
	}
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	b.WriteString(a.help.FullHelpView(a.keymap.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("press any key to return"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Items returns the answers currently listed.
func (a *App) Items() []domain.AnswerItem {
	return a.askView.Items()
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its first size.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.help.Width = width
	a.askView.SetDimensions(width, height)
	a.chunkView.SetDimensions(width, height)
	if a.coachView != nil {
		a.coachView.SetDimensions(width, height)
	}
}

// Cue returns the coaching cue on screen, if any.
func (a *App) Cue() *domain.CoachCue {
	if a.coachView == nil {
		return nil
	}
	return a.coachView.Cue()
}
