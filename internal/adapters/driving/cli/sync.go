package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

var syncFallback bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Rebuild story beats from the configured note source",
	Long: `Fetches notes from the configured source (Notion or a notes file),
splits them into story beats, embeds every beat and writes the snapshot.

With --fallback, a failed sync loads the last snapshot instead.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncFallback, "fallback", false, "load the last snapshot if the sync fails")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	cmd.Println("Synchronising notes...")

	var (
		report *domain.IngestReport
		err    error
	)
	if syncFallback {
		report, err = ingestService.Refresh(cmd.Context())
	} else {
		report, err = ingestService.Run(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, report *domain.IngestReport) {
	if report == nil {
		return
	}
	if report.FromSnapshot {
		cmd.Printf("Sync failed; loaded %d chunks from the last snapshot.\n", report.Chunks)
		return
	}
	cmd.Printf("Synced %d notes into %d chunks (%d embedded, dimension %d) in %s.\n",
		report.Notes, report.Chunks, report.Embedded, report.Dimension, report.Duration.Round(time.Millisecond))
}
