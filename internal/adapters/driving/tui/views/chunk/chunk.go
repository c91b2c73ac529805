// Package chunk provides the full-text view of a single story beat.
package chunk

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driving"
)

// reservedLines covers the title, metadata separator, position and help rows.
const reservedLines = 7

// View shows one answer item with its metadata and scrollable text.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	chunks driving.ChunkService
	ctx    context.Context

	item         *domain.AnswerItem
	metadata     map[string]string
	lines        []string
	scrollOffset int
	width        int
	height       int
	err          error
	loading      bool
}

// NewView creates a chunk view. chunks may be nil, in which case only the
// answer item's own fields are shown.
func NewView(s *styles.Styles, km *keymap.KeyMap, chunks driving.ChunkService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles: s,
		keymap: km,
		chunks: chunks,
		ctx:    context.Background(),
		width:  80,
		height: 24,
	}
}

// WithContext sets the context used for chunk lookups.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetItem shows item and starts loading the stored chunk behind it.
func (v *View) SetItem(item domain.AnswerItem) tea.Cmd {
	v.item = &item
	v.metadata = item.Metadata
	v.scrollOffset = 0
	v.err = nil
	v.loading = false
	v.wrap()

	if v.chunks == nil {
		return nil
	}
	v.loading = true
	chunks, ctx, id := v.chunks, v.ctx, item.ChunkID
	return func() tea.Msg {
		c, err := chunks.Get(ctx, id)
		return messages.ChunkLoaded{ChunkID: id, Chunk: c, Err: err}
	}
}

// Update handles messages for the chunk view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ChunkLoaded:
		v.handleChunkLoaded(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}
	return v, nil
}

func (v *View) handleChunkLoaded(msg messages.ChunkLoaded) {
	if v.item == nil || msg.ChunkID != v.item.ChunkID {
		return
	}
	v.loading = false
	if msg.Err != nil {
		// The store may have been reloaded since the answer was ranked.
		if !errors.Is(msg.Err, domain.ErrNotFound) {
			v.err = msg.Err
		}
		return
	}
	if msg.Chunk == nil {
		return
	}
	v.item.Text = msg.Chunk.Text
	v.metadata = msg.Chunk.Metadata
	v.wrap()
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewAsk} }
	case key.Matches(msg, v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }
	case key.Matches(msg, v.keymap.Up):
		v.scrollTo(v.scrollOffset - 1)
	case key.Matches(msg, v.keymap.Down):
		v.scrollTo(v.scrollOffset + 1)
	case key.Matches(msg, v.keymap.PageUp):
		v.scrollTo(v.scrollOffset - v.visibleLines())
	case key.Matches(msg, v.keymap.PageDown):
		v.scrollTo(v.scrollOffset + v.visibleLines())
	case key.Matches(msg, v.keymap.Top):
		v.scrollTo(0)
	case key.Matches(msg, v.keymap.Bottom):
		v.scrollTo(v.maxScrollOffset())
	}
	return v, nil
}

func (v *View) scrollTo(offset int) {
	v.scrollOffset = max(0, min(offset, v.maxScrollOffset()))
}

// wrap re-flows the item text to the current width.
func (v *View) wrap() {
	if v.item == nil || strings.TrimSpace(v.item.Text) == "" {
		v.lines = nil
		return
	}
	contentWidth := max(v.width-4, 20)
	wrapped := lipgloss.NewStyle().Width(contentWidth).Render(v.item.Text)
	v.lines = strings.Split(wrapped, "\n")
	for i := range v.lines {
		v.lines[i] = strings.TrimRight(v.lines[i], " ")
	}
	v.scrollTo(v.scrollOffset)
}

func (v *View) visibleLines() int {
	return max(v.height-reservedLines-len(v.metadataKeys()), 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

func (v *View) metadataKeys() []string {
	keys := make([]string, 0, len(v.metadata))
	for k := range v.metadata {
		if k != "title" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// View renders the chunk view.
func (v *View) View() string {
	var b strings.Builder

	if v.item == nil {
		b.WriteString(v.styles.Muted.Render("Nothing selected"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	b.WriteString(v.styles.Title.Render(list.Heading(v.item)))
	b.WriteString("  ")
	b.WriteString(v.styles.Score.Render(fmt.Sprintf("%.3f", v.item.Score)))
	b.WriteString("\n")
	for _, k := range v.metadataKeys() {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%s: %s", k, v.metadata[k])))
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat("─", min(v.width-4, 60)))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.lines) == 0 && v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case len(v.lines) == 0:
		b.WriteString(v.styles.Muted.Render("(No text)"))
	default:
		v.renderLines(&b)
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) renderLines(b *strings.Builder) {
	visible := v.visibleLines()
	end := min(v.scrollOffset+visible, len(v.lines))
	for i := v.scrollOffset; i < end; i++ {
		b.WriteString(v.styles.Normal.Render(v.lines[i]))
		b.WriteString("\n")
	}
	if len(v.lines) > visible {
		percentage := 0
		if v.maxScrollOffset() > 0 {
			percentage = v.scrollOffset * 100 / v.maxScrollOffset()
		}
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("\n  [%d%%] Line %d-%d of %d",
			percentage, v.scrollOffset+1, end, len(v.lines))))
	}
}

func (v *View) renderHelp() string {
	bindings := v.keymap.ChunkHelp()
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		hints = append(hints, fmt.Sprintf("[%s] %s", b.Help().Key, b.Help().Desc))
	}
	return v.styles.Help.Render(strings.Join(hints, "  "))
}

// SetDimensions sets the view dimensions and re-flows the text.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.wrap()
}

// Item returns the item being shown.
func (v *View) Item() *domain.AnswerItem {
	return v.item
}

// Lines returns the wrapped text lines.
func (v *View) Lines() []string {
	return v.lines
}

// ScrollOffset returns the first visible line index.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Loading reports whether the stored chunk is still being fetched.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
