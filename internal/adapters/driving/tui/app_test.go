package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/storybank/internal/core/domain"
)

func newTestApp(t *testing.T, retrieval *mockRetrievalService) *App {
	t.Helper()
	chunks := &mockChunkService{chunks: map[string]domain.Chunk{
		"dragon#0": {ID: "dragon#0", NoteID: "dragon", Text: "The dragon woke and the village ran.",
			Metadata: map[string]string{"title": "Dragon", "tags": "fire"}},
	}}
	app, err := NewApp(NewPorts(retrieval, chunks))
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

// drain runs cmd and feeds every resulting message back into the app,
// following batches, until no commands remain or a quit is seen.
func drain(t *testing.T, app *App, cmd tea.Cmd) (quit bool) {
	t.Helper()
	pending := []tea.Cmd{cmd}
	for steps := 0; len(pending) > 0 && steps < 20; steps++ {
		next := pending[0]
		pending = pending[1:]
		if next == nil {
			continue
		}
		msg := next()
		switch msg := msg.(type) {
		case tea.BatchMsg:
			pending = append(pending, msg...)
			continue
		case tea.QuitMsg:
			return true
		case nil:
			continue
		}
		if isTick(msg) {
			continue
		}
		_, c := app.Update(msg)
		pending = append(pending, c)
	}
	return false
}

// isTick filters spinner and cursor ticks, which reschedule forever.
func isTick(msg tea.Msg) bool {
	switch msg.(type) {
	case messages.AnswerCompleted, messages.ItemSelected, messages.ChunkLoaded,
		messages.CoachCompleted, messages.ViewChanged, messages.ErrorOccurred, messages.Quit:
		return false
	}
	return true
}

func typeText(app *App, text string) {
	for _, r := range text {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestNewApp(t *testing.T) {
	_, err := NewApp(&Ports{})
	require.ErrorIs(t, err, ErrMissingRetrievalService)

	app, err := NewApp(NewPorts(&mockRetrievalService{}, nil))
	require.NoError(t, err)
	assert.Equal(t, messages.ViewAsk, app.CurrentView())
	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())
	assert.NotNil(t, app.Init())
}

func TestApp_WithContext(t *testing.T) {
	app, err := NewApp(NewPorts(&mockRetrievalService{}, nil))
	require.NoError(t, err)
	type ctxKey string
	ctx := context.WithValue(context.Background(), ctxKey("k"), "v")

	assert.Same(t, app, app.WithContext(ctx))
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_WindowSize(t *testing.T) {
	app, err := NewApp(NewPorts(&mockRetrievalService{}, nil))
	require.NoError(t, err)

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 90, Height: 20})

	assert.Same(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "Storybank")
}

func TestApp_AskFlow(t *testing.T) {
	var gotQuery string
	var gotK int
	app := newTestApp(t, &mockRetrievalService{
		answerFunc: func(_ context.Context, q string, k int) ([]domain.AnswerItem, error) {
			gotQuery, gotK = q, k
			return testItems(), nil
		},
	})

	typeText(app, "dragon attack")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(t, app, cmd)

	assert.Equal(t, "dragon attack", gotQuery)
	assert.Equal(t, 0, gotK)
	require.Len(t, app.Items(), 2)
	assert.NoError(t, app.Err())
	assert.Contains(t, app.View(), "dragon / Opening")
}

func TestApp_WithDefaultK(t *testing.T) {
	var gotK int
	retrieval := &mockRetrievalService{
		answerFunc: func(_ context.Context, _ string, k int) ([]domain.AnswerItem, error) {
			gotK = k
			return nil, nil
		},
	}
	app, err := NewApp(NewPorts(retrieval, nil), WithDefaultK(3))
	require.NoError(t, err)
	app.SetDimensions(80, 24)

	typeText(app, "storm")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(t, app, cmd)

	assert.Equal(t, 3, gotK)
}

func TestApp_AskError(t *testing.T) {
	app := newTestApp(t, &mockRetrievalService{
		answerFunc: func(context.Context, string, int) ([]domain.AnswerItem, error) {
			return nil, domain.ErrEmbeddingUnavailable
		},
	})

	typeText(app, "anything")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(t, app, cmd)

	assert.ErrorIs(t, app.Err(), domain.ErrEmbeddingUnavailable)
	assert.Contains(t, app.View(), "embedding service unavailable")
}

func TestApp_OpenChunkAndBack(t *testing.T) {
	app := newTestApp(t, &mockRetrievalService{
		answerFunc: func(context.Context, string, int) ([]domain.AnswerItem, error) {
			return testItems(), nil
		},
	})

	typeText(app, "dragon")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(t, app, cmd)

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(t, app, cmd)

	assert.Equal(t, messages.ViewChunk, app.CurrentView())
	view := app.View()
	assert.Contains(t, view, "The dragon woke and the village ran.")
	assert.Contains(t, view, "tags: fire")

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	drain(t, app, cmd)
	assert.Equal(t, messages.ViewAsk, app.CurrentView())
}

func TestApp_HelpToggle(t *testing.T) {
	app := newTestApp(t, &mockRetrievalService{})

	app.Update(messages.ViewChanged{View: messages.ViewHelp})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	assert.Contains(t, app.View(), "Help")

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Equal(t, messages.ViewAsk, app.CurrentView())
}

func TestApp_Quit(t *testing.T) {
	app := newTestApp(t, &mockRetrievalService{})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = app.Update(messages.Quit{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	// Esc on an empty ask view leaves the program.
	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, drain(t, app, cmd))
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t, &mockRetrievalService{})
	boom := errors.New("boom")

	app.Update(messages.ErrorOccurred{Err: boom})

	assert.ErrorIs(t, app.Err(), boom)
	assert.Contains(t, app.View(), "boom")
}

func newCoachApp(t *testing.T, svc *mockCoachService) *App {
	t.Helper()
	app, err := NewApp(&Ports{Retrieval: &mockRetrievalService{}, Coach: svc})
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

func TestApp_CoachFlow(t *testing.T) {
	svc := &mockCoachService{cue: &domain.CoachCue{
		NoteID: "dragon", Project: "Village", Topic: "Dragon", Fit: "fire",
		Beat: "Opening", BeatNum: 1, Total: 2, Next: "Escape",
		Response: "The dragon woke. We ran.", Generated: true,
	}}
	app := newCoachApp(t, svc)

	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, messages.ViewCoach, app.CurrentView())

	typeText(app, "Tell me about the dragon")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(t, app, cmd)

	assert.Equal(t, []string{"Tell me about the dragon"}, svc.heard)
	require.NotNil(t, app.Cue())
	assert.NoError(t, app.Err())
	view := app.View()
	assert.Contains(t, view, "VILLAGE: Dragon")
	assert.Contains(t, view, "next: Escape")

	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, messages.ViewAsk, app.CurrentView())
}

func TestApp_CoachError(t *testing.T) {
	app := newCoachApp(t, &mockCoachService{err: domain.ErrNotFound})

	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(app, "Tell me about the dragon")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(t, app, cmd)

	assert.ErrorIs(t, app.Err(), domain.ErrNotFound)
	assert.Contains(t, app.View(), "no story matches")
}

func TestApp_CoachEscReturnsToAsk(t *testing.T) {
	app := newCoachApp(t, &mockCoachService{})

	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	drain(t, app, cmd)

	assert.Equal(t, messages.ViewAsk, app.CurrentView())
}

func TestApp_TabWithoutCoach(t *testing.T) {
	app := newTestApp(t, &mockRetrievalService{})

	app.Update(tea.KeyMsg{Type: tea.KeyTab})

	assert.Equal(t, messages.ViewAsk, app.CurrentView())
	assert.Nil(t, app.Cue())
}
