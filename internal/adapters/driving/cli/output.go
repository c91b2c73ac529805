package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

const cueRuleWidth = 52

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// outputItems prints ranked items, styled when stdout is a terminal.
func outputItems(cmd *cobra.Command, items []domain.AnswerItem) {
	if len(items) == 0 {
		cmd.Println("No matching stories.")
		return
	}

	styled := isTerminal(cmd.OutOrStdout())
	for i := range items {
		heading := itemHeading(&items[i])
		score := fmt.Sprintf("(%.3f)", items[i].Score)
		if styled {
			heading = headingStyle.Render(heading)
			score = scoreStyle.Render(score)
		}
		cmd.Printf("  [%d] %s %s\n", i+1, heading, score)
		for _, line := range strings.Split(items[i].Text, "\n") {
			cmd.Printf("      %s\n", line)
		}
		cmd.Println()
	}
}

// outputCue prints a coaching cue: the story and beat position, what to
// say one sentence per line, and the next beat.
func outputCue(cmd *cobra.Command, cue *domain.CoachCue) {
	styled := isTerminal(cmd.OutOrStdout())
	rule := strings.Repeat("─", cueRuleWidth)

	story := cue.Topic
	if cue.Project != "" {
		story = strings.ToUpper(cue.Project) + ": " + cue.Topic
	}
	fit := "[" + cue.Fit + "]"
	if styled {
		story = headingStyle.Render(story)
		fit = scoreStyle.Render(fit)
	}

	cmd.Println(rule)
	cmd.Printf("  %s\n", story)
	cmd.Printf("  ● %d/%d  %s  %s\n", cue.BeatNum, cue.Total, cue.Beat, fit)
	cmd.Println(rule)
	cmd.Println()
	for _, sentence := range cue.Sentences() {
		cmd.Printf("  %s\n\n", sentence)
	}
	if cue.Next != "" {
		cmd.Printf("  ↓ next: %s\n", cue.Next)
	}
	cmd.Println(rule)
}

// itemHeading names where an item came from: note title and section.
func itemHeading(item *domain.AnswerItem) string {
	title := item.Metadata["title"]
	if title == "" {
		title = item.NoteID
	}
	if item.Section == "" {
		return title
	}
	return title + " / " + item.Section
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
