package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askK     int
	askJSON  bool
	askCoach bool
)

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Find the story beats that match a query",
	Long: `Embeds the query and ranks stored story beats by cosine similarity.
Words after the command are joined into one query.

With --coach the query is treated as an interview question: the best
story is chosen and the cue shows what to say for its first beat.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askK, "k", "k", 0, "number of results (0 = default from settings)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output results as JSON")
	askCmd.Flags().BoolVar(&askCoach, "coach", false, "show what to say instead of ranked beats")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	query := strings.Join(args, " ")
	if askCoach {
		return runCoach(cmd, query, askJSON)
	}

	items, err := retrievalService.Answer(cmd.Context(), query, askK)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputJSON(cmd, items)
	}
	outputItems(cmd, items)
	return nil
}

// runCoach prints the cue for one question.
func runCoach(cmd *cobra.Command, question string, asJSON bool) error {
	if coachService == nil {
		return errors.New("coach service not configured")
	}

	cue, err := coachService.Coach(cmd.Context(), question)
	if err != nil {
		return fmt.Errorf("coach failed: %w", err)
	}

	if asJSON {
		return outputJSON(cmd, cue)
	}
	outputCue(cmd, cue)
	return nil
}
