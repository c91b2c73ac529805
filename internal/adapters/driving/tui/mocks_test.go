package tui

import (
	"context"
	"io"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

type mockRetrievalService struct {
	answerFunc func(ctx context.Context, q string, k int) ([]domain.AnswerItem, error)
}

func (m *mockRetrievalService) Answer(ctx context.Context, q string, k int) ([]domain.AnswerItem, error) {
	if m.answerFunc != nil {
		return m.answerFunc(ctx, q, k)
	}
	return nil, nil
}

func (m *mockRetrievalService) AnswerAudio(
	_ context.Context, _ io.Reader, _ string, _ int,
) (string, []domain.AnswerItem, error) {
	return "", nil, domain.ErrTranscriptionUnavailable
}

type mockChunkService struct {
	chunks map[string]domain.Chunk
}

func (m *mockChunkService) Get(_ context.Context, id string) (*domain.Chunk, error) {
	c, ok := m.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *mockChunkService) List(_ context.Context, _ string) ([]domain.Chunk, error) {
	out := make([]domain.Chunk, 0, len(m.chunks))
	for _, c := range m.chunks {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockChunkService) Stats(_ context.Context) domain.IngestReport {
	return domain.IngestReport{Chunks: len(m.chunks)}
}

type mockCoachService struct {
	cue    *domain.CoachCue
	err    error
	heard  []string
	resets int
}

func (m *mockCoachService) Coach(_ context.Context, heard string) (*domain.CoachCue, error) {
	m.heard = append(m.heard, heard)
	if m.err != nil {
		return nil, m.err
	}
	return m.cue, nil
}

func (m *mockCoachService) Reset() { m.resets++ }

func testItems() []domain.AnswerItem {
	return []domain.AnswerItem{
		{ChunkID: "dragon#0", NoteID: "dragon", Section: "Opening", Text: "The dragon woke.", Score: 0.9},
		{ChunkID: "harbour#0", NoteID: "harbour", Text: "Boats at dawn.", Score: 0.4},
	}
}
