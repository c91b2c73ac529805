package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

var (
	listenK     int
	listenJSON  bool
	listenCoach bool
)

var listenCmd = &cobra.Command{
	Use:   "listen [audio-file]",
	Short: "Transcribe a recording and find matching story beats",
	Long: `Sends an audio file to the configured transcription provider and
answers the transcript as a query. Supported formats depend on the
provider (Whisper accepts mp3, mp4, m4a, wav and webm).

With --coach the transcript is treated as an interview question and the
output is a coaching cue instead of ranked beats.`,
	Args: cobra.ExactArgs(1),
	RunE: runListen,
}

// listenResult is the JSON form of a listen run.
type listenResult struct {
	Transcript string              `json:"transcript"`
	Items      []domain.AnswerItem `json:"items,omitempty"`
	Cue        *domain.CoachCue    `json:"cue,omitempty"`
}

func init() {
	listenCmd.Flags().IntVarP(&listenK, "k", "k", 0, "number of results (0 = default from settings)")
	listenCmd.Flags().BoolVar(&listenJSON, "json", false, "output transcript and results as JSON")
	listenCmd.Flags().BoolVar(&listenCoach, "coach", false, "show what to say instead of ranked beats")
	rootCmd.AddCommand(listenCmd)
}

func runListen(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	k := listenK
	if listenCoach {
		if coachService == nil {
			return errors.New("coach service not configured")
		}
		k = 1
	}

	transcript, items, err := retrievalService.AnswerAudio(cmd.Context(), f, filepath.Base(path), k)
	if err != nil {
		if transcript != "" {
			cmd.Printf("Heard: %s\n", transcript)
		}
		return fmt.Errorf("listen failed: %w", err)
	}

	if listenCoach {
		return coachTranscript(cmd, transcript)
	}

	if listenJSON {
		return outputJSON(cmd, listenResult{Transcript: transcript, Items: items})
	}

	cmd.Printf("Heard: %s\n\n", transcript)
	outputItems(cmd, items)
	return nil
}

// coachTranscript prints the cue for a transcript. Speech that is not a
// question is reported, not treated as a failure.
func coachTranscript(cmd *cobra.Command, transcript string) error {
	cue, err := coachService.Coach(cmd.Context(), transcript)
	switch {
	case errors.Is(err, domain.ErrNotAQuestion):
		if listenJSON {
			return outputJSON(cmd, listenResult{Transcript: transcript})
		}
		cmd.Printf("Heard: %s\n\nNot a question; nothing to coach.\n", transcript)
		return nil
	case err != nil:
		cmd.Printf("Heard: %s\n", transcript)
		return fmt.Errorf("coach failed: %w", err)
	}

	if listenJSON {
		return outputJSON(cmd, listenResult{Transcript: transcript, Cue: cue})
	}
	cmd.Printf("Heard: %s\n\n", transcript)
	outputCue(cmd, cue)
	return nil
}
