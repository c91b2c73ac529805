package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

const notesYAML = `
notes:
  - id: acme-outage
    title: "Acme: Outage"
    sections:
      - name: metric
        text: Cut the recovery time from four hours to thirty minutes.
      - name: action
        text: Wrote the runbook and trained the on-call rotation.
  - id: globex-hiring
    title: "Globex: Hiring"
    sections:
      - name: result
        text: Grew the team from three engineers to nine.
`

func testSettings(t *testing.T) *domain.AppSettings {
	t.Helper()
	dir := t.TempDir()
	notes := filepath.Join(dir, "notes.yaml")
	require.NoError(t, os.WriteFile(notes, []byte(notesYAML), 0o600))

	settings := domain.DefaultAppSettings()
	settings.DataDir = dir
	settings.Source.NotesFile = notes
	return &settings
}

func TestWire_SyncThenAnswer(t *testing.T) {
	ctx := context.Background()
	settings := testSettings(t)

	svc, closeFn, err := wire(ctx, settings, domain.DefaultPipelineConfig())
	require.NoError(t, err)
	defer func() { assert.NoError(t, closeFn()) }()

	report, err := svc.Ingest.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Notes)
	assert.Equal(t, 3, report.Chunks)
	assert.FileExists(t, settings.SnapshotPath())

	items, err := svc.Retrieval.Answer(ctx, "who wrote the runbook", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "acme-outage", items[0].NoteID)
	assert.Equal(t, "action", items[0].Section)

	stats := svc.Chunks.Stats(ctx)
	assert.Equal(t, 3, stats.Chunks)

	cue, err := svc.Coach.Coach(ctx, "who wrote the runbook")
	require.NoError(t, err)
	assert.Equal(t, "acme-outage", cue.NoteID)
	assert.Equal(t, "Acme", cue.Project)
	assert.Equal(t, 1, cue.BeatNum)
	assert.Equal(t, 2, cue.Total)
	assert.Equal(t, "action", cue.Next)
	assert.False(t, cue.Generated)
	assert.Equal(t, "Cut the recovery time from four hours to thirty minutes.", cue.Response)
}

func TestWire_LoadsExistingSnapshot(t *testing.T) {
	ctx := context.Background()
	settings := testSettings(t)

	first, closeFirst, err := wire(ctx, settings, domain.DefaultPipelineConfig())
	require.NoError(t, err)
	_, err = first.Ingest.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, closeFirst())

	second, closeSecond, err := wire(ctx, settings, domain.DefaultPipelineConfig())
	require.NoError(t, err)
	defer func() { assert.NoError(t, closeSecond()) }()

	chunks, err := second.Chunks.List(ctx, "globex-hiring")
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestWire_MissingSourceStillAnswers(t *testing.T) {
	ctx := context.Background()
	settings := testSettings(t)
	settings.Source.NotesFile = ""

	svc, closeFn, err := wire(ctx, settings, domain.DefaultPipelineConfig())
	require.NoError(t, err)
	defer func() { assert.NoError(t, closeFn()) }()

	items, err := svc.Retrieval.Answer(ctx, "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = svc.Ingest.Run(ctx)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestWire_UnsupportedEmbeddingProvider(t *testing.T) {
	settings := testSettings(t)
	settings.Embedding.Provider = "carrier-pigeon"

	_, _, err := wire(context.Background(), settings, domain.DefaultPipelineConfig())

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestBuildPipeline(t *testing.T) {
	tests := []struct {
		name    string
		cfg     domain.PipelineConfig
		wantErr bool
	}{
		{"default when empty", domain.PipelineConfig{}, false},
		{"configured", domain.PipelineConfig{Processors: []string{"chunker", "markdown", "whitespace"}}, false},
		{"unknown processor", domain.PipelineConfig{Processors: []string{"chunker", "translate"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := buildPipeline(tt.cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnsupportedType)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, p)
		})
	}
}
