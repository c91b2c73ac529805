package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var chunkJSON bool

var chunkCmd = &cobra.Command{
	Use:   "chunk",
	Short: "Inspect stored story beats",
}

var chunkGetCmd = &cobra.Command{
	Use:   "get [chunk-id]",
	Short: "Show one story beat",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunkGet,
}

var chunkListCmd = &cobra.Command{
	Use:   "list [note-id]",
	Short: "List story beats, optionally for one note",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runChunkList,
}

var chunkStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show chunk store statistics",
	Args:  cobra.NoArgs,
	RunE:  runChunkStats,
}

func init() {
	chunkCmd.PersistentFlags().BoolVar(&chunkJSON, "json", false, "output as JSON")
	chunkCmd.AddCommand(chunkGetCmd)
	chunkCmd.AddCommand(chunkListCmd)
	chunkCmd.AddCommand(chunkStatsCmd)
	rootCmd.AddCommand(chunkCmd)
}

// chunkView is the printable form of a chunk. Embeddings are omitted.
type chunkView struct {
	ID       string            `json:"id"`
	NoteID   string            `json:"note_id"`
	Section  string            `json:"section"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Embedded bool              `json:"embedded"`
}

func runChunkGet(cmd *cobra.Command, args []string) error {
	if chunkService == nil {
		return errors.New("chunk service not configured")
	}

	chunk, err := chunkService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get chunk: %w", err)
	}

	view := chunkView{
		ID:       chunk.ID,
		NoteID:   chunk.NoteID,
		Section:  chunk.Section,
		Text:     chunk.Text,
		Metadata: chunk.Metadata,
		Embedded: chunk.HasEmbedding(),
	}
	if chunkJSON {
		return outputJSON(cmd, view)
	}

	cmd.Printf("ID:      %s\n", view.ID)
	cmd.Printf("Note:    %s\n", view.NoteID)
	cmd.Printf("Section: %s\n", view.Section)
	for _, k := range sortedKeys(view.Metadata) {
		cmd.Printf("  %s: %s\n", k, view.Metadata[k])
	}
	cmd.Println()
	cmd.Println(view.Text)
	return nil
}

func runChunkList(cmd *cobra.Command, args []string) error {
	if chunkService == nil {
		return errors.New("chunk service not configured")
	}

	noteID := ""
	if len(args) > 0 {
		noteID = args[0]
	}

	chunks, err := chunkService.List(cmd.Context(), noteID)
	if err != nil {
		return fmt.Errorf("failed to list chunks: %w", err)
	}

	if chunkJSON {
		views := make([]chunkView, len(chunks))
		for i := range chunks {
			views[i] = chunkView{
				ID:       chunks[i].ID,
				NoteID:   chunks[i].NoteID,
				Section:  chunks[i].Section,
				Text:     chunks[i].Text,
				Metadata: chunks[i].Metadata,
				Embedded: chunks[i].HasEmbedding(),
			}
		}
		return outputJSON(cmd, views)
	}

	if len(chunks) == 0 {
		cmd.Println("No chunks found.")
		return nil
	}
	for i := range chunks {
		cmd.Printf("%s  %s / %s\n", chunks[i].ID, chunks[i].NoteID, chunks[i].Section)
	}
	return nil
}

func runChunkStats(cmd *cobra.Command, _ []string) error {
	if chunkService == nil {
		return errors.New("chunk service not configured")
	}

	stats := chunkService.Stats(cmd.Context())
	if chunkJSON {
		return outputJSON(cmd, stats)
	}
	cmd.Printf("Notes:     %d\n", stats.Notes)
	cmd.Printf("Chunks:    %d\n", stats.Chunks)
	cmd.Printf("Embedded:  %d\n", stats.Embedded)
	cmd.Printf("Dimension: %d\n", stats.Dimension)
	return nil
}
