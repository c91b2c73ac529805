// Command storybank finds the story beats in your notes that match what
// you are talking about.
package main

import (
	"os"

	"github.com/custodia-labs/storybank/internal/adapters/driven/ai"
	"github.com/custodia-labs/storybank/internal/adapters/driven/config/file"
	"github.com/custodia-labs/storybank/internal/adapters/driving/cli"
	"github.com/custodia-labs/storybank/internal/core/services"
	"github.com/custodia-labs/storybank/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configDir, err := file.DefaultDir()
	if err != nil {
		logger.Error("resolving config directory: %v", err)
		os.Exit(1)
	}
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		logger.Error("loading config: %v", err)
		os.Exit(1)
	}

	settings := services.NewSettingsService(configStore, ai.NewConfigValidator())

	cli.SetVersion(version)
	cli.SetSettingsService(settings)
	cli.SetBootstrap(newBootstrap(settings))

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
