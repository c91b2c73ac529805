// Package cli provides the cobra command tree for Storybank.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/storybank/internal/core/ports/driving"
	"github.com/custodia-labs/storybank/internal/logger"
)

// version is set at build time.
var version = "dev"

// skipBootstrap marks commands that run without the AI services.
const skipBootstrap = "storybank/skip-bootstrap"

// SnapshotWatcher reports replacements of the snapshot file.
type SnapshotWatcher interface {
	Watch(ctx context.Context, debounce time.Duration) (<-chan struct{}, error)
}

// Services holds the driving ports used by commands.
type Services struct {
	Retrieval driving.RetrievalService
	Chunks    driving.ChunkService
	Ingest    driving.IngestService
	Coach     driving.CoachService
	Snapshot  SnapshotWatcher
}

// Bootstrap builds the services. The returned close function releases the
// embedder and transcriber handles and is called once after the command.
type Bootstrap func(ctx context.Context) (*Services, func() error, error)

var (
	retrievalService driving.RetrievalService
	chunkService     driving.ChunkService
	ingestService    driving.IngestService
	coachService     driving.CoachService
	settingsService  driving.SettingsService
	snapshotWatcher  SnapshotWatcher

	bootstrap      Bootstrap
	closeServices  func() error
	verbose        bool
	envFile        string
	servicesLoaded bool
)

var rootCmd = &cobra.Command{
	Use:   "storybank",
	Short: "Find the right story while you talk",
	Long: `Storybank indexes story beats from your notes and finds the ones that
match what you are saying, by meaning rather than keywords.

Sync notes with 'storybank sync', then ask with 'storybank ask', serve the
browser page with 'storybank serve', or connect an assistant with
'storybank mcp serve'.`,
	SilenceUsage:       true,
	PersistentPreRunE:  persistentPreRun,
	PersistentPostRunE: persistentPostRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with secrets")
}

// SetVersion sets the version reported by 'storybank version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetSettingsService sets the settings service used by the settings commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetBootstrap sets the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs already built services.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	retrievalService = s.Retrieval
	chunkService = s.Chunks
	ingestService = s.Ingest
	coachService = s.Coach
	snapshotWatcher = s.Snapshot
	servicesLoaded = true
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func persistentPreRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())
	loadEnvFile(envFile)

	if bootstrap == nil || servicesLoaded || skipsBootstrap(cmd) {
		return nil
	}

	done := logger.Timed("bootstrap")
	services, closer, err := bootstrap(cmd.Context())
	done()
	if err != nil {
		return fmt.Errorf("starting services: %w", err)
	}
	SetServices(services)
	closeServices = closer
	return nil
}

func persistentPostRun(_ *cobra.Command, _ []string) error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

// loadEnvFile loads secrets from a dotenv file. Variables already set in the
// environment win. A missing file is not an error.
func loadEnvFile(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("could not load %s: %v", path, err)
		}
		return
	}
	logger.Debug("loaded environment from %s", path)
}

// skipsBootstrap reports whether cmd or one of its parents is marked to run
// without services.
func skipsBootstrap(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipBootstrap] == "true" {
			return true
		}
	}
	return false
}

func noBootstrap() map[string]string {
	return map[string]string{skipBootstrap: "true"}
}
