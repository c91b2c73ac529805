package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/storybank/internal/adapters/driving/web"
	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driving"
	"github.com/custodia-labs/storybank/internal/logger"
)

// reloadDebounce collapses the bursts of events an atomic rename produces.
const reloadDebounce = 250 * time.Millisecond

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search page and JSON endpoint",
	Long: `Starts an HTTP server with a search page at / and a JSON endpoint at
/search?q=<query>&k=<n>.

The server watches the snapshot file and reloads story beats when another
process (for example 'storybank sync') replaces it.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings, :5000)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true, "reload when the snapshot file changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	server, err := web.NewServer(retrievalService, chunkService)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if serveWatch && snapshotWatcher != nil && ingestService != nil {
		changes, err := snapshotWatcher.Watch(ctx, reloadDebounce)
		if err != nil {
			logger.Warn("snapshot reload disabled: %v", err)
		} else {
			go reloadOnChange(ctx, changes, ingestService)
		}
	}

	addr := resolveServeAddr()
	cmd.Printf("Serving on http://localhost%s\n", addr)
	return server.Run(ctx, addr)
}

// reloadOnChange loads the snapshot each time changes fires. A failed load
// keeps the current chunks.
func reloadOnChange(ctx context.Context, changes <-chan struct{}, ingest driving.IngestService) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			report, err := ingest.LoadSnapshot(ctx)
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					logger.Error("snapshot reload failed: %v", err)
				}
				continue
			}
			logger.Info("reloaded %d chunks from snapshot", report.Chunks)
		}
	}
}

func resolveServeAddr() string {
	if serveAddr != "" {
		return serveAddr
	}
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil && settings.ServerAddr != "" {
			return settings.ServerAddr
		}
	}
	return domain.DefaultAppSettings().ServerAddr
}
