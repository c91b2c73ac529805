package notesfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/storybank/internal/connectors"
	"github.com/custodia-labs/storybank/internal/core/domain"
)

const notesYAML = `
notes:
  - id: acme-outage
    title: "Acme: Outage"
    tags: [incident, " ownership "]
    metadata:
      role: lead
    sections:
      - name: metric
        text: "  Cut MTTR from 4h to 30m. "
      - name: action
        text: Wrote the runbook.
      - name: empty
        text: ""
  - title: "Globex: Hiring"
    body: |
      Tags: hiring
      ## Beat 1
      Grew the team from 3 to 9.
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSource_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notes.yaml", notesYAML)

	notes, err := New(path).FetchNotes(context.Background())

	require.NoError(t, err)
	require.Len(t, notes, 2)

	acme := notes[0]
	assert.Equal(t, "acme-outage", acme.ID)
	assert.Equal(t, "Acme", acme.Metadata[connectors.MetaProject])
	assert.Equal(t, "lead", acme.Metadata["role"])
	assert.Equal(t, "incident, ownership", acme.Metadata[connectors.MetaTags])
	assert.Equal(t, []domain.Section{
		{Name: "metric", Text: "Cut MTTR from 4h to 30m."},
		{Name: "action", Text: "Wrote the runbook."},
		{Name: "empty", Text: ""},
	}, acme.Sections, "blank sections are left for the chunker to drop")

	globex := notes[1]
	assert.Equal(t, "Globex: Hiring", globex.ID, "title stands in for a missing id")
	assert.Equal(t, "hiring", globex.Metadata[connectors.MetaTags])
	assert.Equal(t, []domain.Section{{Name: "Beat 1", Text: "Grew the team from 3 to 9."}}, globex.Sections)
}

func TestSource_Markdown(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b-story.md", "---\nid: custom\ntitle: \"Initech: Migration\"\ntags: [infra]\n---\n## Beat 1\nMoved to k8s.\n")
	writeFile(t, dir, "a-plain.md", strings.Repeat("A plain note without front matter. ", 3))
	writeFile(t, dir, "ignored.txt", "not markdown")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.md"), 0o700))

	notes, err := New(dir).FetchNotes(context.Background())

	require.NoError(t, err)
	require.Len(t, notes, 2)

	assert.Equal(t, "a-plain", notes[0].ID)
	assert.Equal(t, "a-plain", notes[0].Title)
	require.Len(t, notes[0].Sections, 1)
	assert.Equal(t, connectors.FullStorySection, notes[0].Sections[0].Name)

	assert.Equal(t, "custom", notes[1].ID)
	assert.Equal(t, "Initech", notes[1].Metadata[connectors.MetaProject])
	assert.Equal(t, "infra", notes[1].Metadata[connectors.MetaTags])
	assert.Equal(t, []domain.Section{{Name: "Beat 1", Text: "Moved to k8s."}}, notes[1].Sections)
}

func TestSource_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("no path", func(t *testing.T) {
		_, err := New("").FetchNotes(ctx)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.ErrorIs(t, err, ErrNoPath)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := New(filepath.Join(dir, "nope.yaml")).FetchNotes(ctx)
		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, dir, "bad.yaml", "notes: [::")
		_, err := New(path).FetchNotes(ctx)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		path := writeFile(t, dir, "dup.yaml", "notes:\n  - id: a\n  - id: a\n")
		_, err := New(path).FetchNotes(ctx)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, err.Error(), `"a"`)
	})

	t.Run("anonymous note", func(t *testing.T) {
		path := writeFile(t, dir, "anon.yaml", "notes:\n  - body: hello\n")
		_, err := New(path).FetchNotes(ctx)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("cancelled", func(t *testing.T) {
		md := t.TempDir()
		writeFile(t, md, "x.md", "x")
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := New(md).FetchNotes(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		front    string
		body     string
		hasFront bool
	}{
		{"none", "just text", "", "just text", false},
		{"basic", "---\nid: x\n---\nbody", "id: x", "body", true},
		{"empty front", "---\n---\nbody", "", "body", true},
		{"crlf", "---\r\nid: x\r\n---\r\nbody", "id: x", "body", true},
		{"front only", "---\nid: x\n---", "id: x", "", true},
		{"unterminated", "---\nid: x\n", "", "---\nid: x\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			front, body, ok := splitFrontMatter(tt.in)
			assert.Equal(t, tt.hasFront, ok)
			assert.Equal(t, tt.front, front)
			assert.Equal(t, tt.body, body)
		})
	}
}

func TestSource_Name(t *testing.T) {
	s := New("/tmp/notes.yaml")
	assert.Equal(t, "file", s.Name())
	assert.Equal(t, "/tmp/notes.yaml", s.Path())
}
