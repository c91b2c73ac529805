// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/storybank/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/storybank/internal/core/domain"
)

// linesPerItem is the rendered height of one answer (heading plus preview).
const linesPerItem = 2

// AnswerList displays ranked answer items in a navigable list.
type AnswerList struct {
	items    []domain.AnswerItem
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewAnswerList creates an empty answer list.
func NewAnswerList(s *styles.Styles) *AnswerList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &AnswerList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *AnswerList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation keys.
func (l *AnswerList) Update(msg tea.Msg) (*AnswerList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the visible window of answers around the selection.
func (l *AnswerList) View() string {
	if len(l.items) == 0 {
		return l.styles.Muted.Render("No matching stories.")
	}

	lines := make([]string, 0, len(l.items)*linesPerItem+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Answers (%d)", len(l.items))), "")

	visible := (l.height - 2) / linesPerItem
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.items) {
		end = len(l.items)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderItem(i, &l.items[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *AnswerList) renderItem(index int, item *domain.AnswerItem) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	headingWidth := l.width - 12
	if headingWidth < 10 {
		headingWidth = 10
	}
	heading := truncate(Heading(item), headingWidth)
	score := fmt.Sprintf("%.3f", item.Score)

	var first string
	if index == l.selected {
		first = l.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, headingWidth, heading, score))
	} else {
		first = l.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, headingWidth, heading)) +
			l.styles.Score.Render(score)
	}

	previewWidth := l.width - 6
	if previewWidth < 20 {
		previewWidth = 20
	}
	preview := strings.Join(strings.Fields(item.Text), " ")
	return first + "\n" + l.styles.Muted.Render("    "+truncate(preview, previewWidth))
}

// Heading names an item by its note title, falling back to the note ID,
// followed by the section when present.
func Heading(item *domain.AnswerItem) string {
	heading := item.Metadata["title"]
	if heading == "" {
		heading = item.NoteID
	}
	if heading == "" {
		heading = item.ChunkID
	}
	if item.Section != "" {
		heading += " / " + item.Section
	}
	return heading
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

// SetItems replaces the list contents and resets the selection.
func (l *AnswerList) SetItems(items []domain.AnswerItem) {
	l.items = items
	l.selected = 0
}

// Items returns the current items.
func (l *AnswerList) Items() []domain.AnswerItem {
	return l.items
}

// Selected returns the index of the selected item.
func (l *AnswerList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index. Out of range values are ignored.
func (l *AnswerList) SetSelected(index int) {
	if index >= 0 && index < len(l.items) {
		l.selected = index
	}
}

// SelectedItem returns the selected item, or nil when the list is empty.
func (l *AnswerList) SelectedItem() *domain.AnswerItem {
	if l.selected < 0 || l.selected >= len(l.items) {
		return nil
	}
	return &l.items[l.selected]
}

// MoveUp moves selection up.
func (l *AnswerList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *AnswerList) MoveDown() {
	if l.selected < len(l.items)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *AnswerList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of items.
func (l *AnswerList) Count() int {
	return len(l.items)
}

// IsEmpty returns whether the list is empty.
func (l *AnswerList) IsEmpty() bool {
	return len(l.items) == 0
}
