package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	items     []domain.AnswerItem
	err       error
	lastQuery string
	lastK     int
}

func (m *mockRetrievalService) Answer(_ context.Context, query string, k int) ([]domain.AnswerItem, error) {
	m.lastQuery = query
	m.lastK = k
	return m.items, m.err
}

func (m *mockRetrievalService) AnswerAudio(
	_ context.Context,
	_ io.Reader,
	_ string,
	_ int,
) (string, []domain.AnswerItem, error) {
	return "", m.items, m.err
}

// mockChunkService is a mock implementation of driving.ChunkService.
type mockChunkService struct {
	chunks []domain.Chunk
	err    error
}

func (m *mockChunkService) Get(_ context.Context, id string) (*domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.chunks {
		if m.chunks[i].ID == id {
			c := m.chunks[i].Clone()
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockChunkService) List(_ context.Context, noteID string) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.Chunk{}
	for i := range m.chunks {
		if noteID == "" || m.chunks[i].NoteID == noteID {
			out = append(out, m.chunks[i])
		}
	}
	return out, nil
}

func (m *mockChunkService) Stats(_ context.Context) domain.IngestReport {
	return domain.IngestReport{Chunks: len(m.chunks)}
}

func testChunks() []domain.Chunk {
	return []domain.Chunk{
		{ID: "c1", NoteID: "n1", Section: "Beat 1", Text: "Lost $2M in 20 minutes", Metadata: map[string]string{"title": "Acme: Outage"}},
		{ID: "c2", NoteID: "n1", Section: "Beat 2", Text: "Rebuilt trust with daily reports"},
		{ID: "c3", NoteID: "n2", Section: "Overview", Text: "Hired a team of five"},
	}
}
