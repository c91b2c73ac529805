package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/storybank/internal/adapters/driven/ai"
	"github.com/custodia-labs/storybank/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/storybank/internal/adapters/driven/storage/snapshot"
	"github.com/custodia-labs/storybank/internal/adapters/driven/vectorindex/bruteforce"
	"github.com/custodia-labs/storybank/internal/adapters/driving/cli"
	"github.com/custodia-labs/storybank/internal/connectors/factory"
	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driven"
	"github.com/custodia-labs/storybank/internal/core/ports/driving"
	"github.com/custodia-labs/storybank/internal/core/services"
	"github.com/custodia-labs/storybank/internal/logger"
	"github.com/custodia-labs/storybank/internal/postprocessors"
)

// newBootstrap returns the function the CLI calls to assemble the
// retrieval core for commands that need it.
func newBootstrap(settingsService driving.SettingsService) cli.Bootstrap {
	return func(ctx context.Context) (*cli.Services, func() error, error) {
		settings, err := settingsService.Get()
		if err != nil {
			return nil, nil, fmt.Errorf("loading settings: %w", err)
		}
		return wire(ctx, settings, settingsService.GetPipelineConfig())
	}
}

// wire builds every service from settings. The store starts from the
// snapshot when one exists.
func wire(
	ctx context.Context,
	settings *domain.AppSettings,
	pipelineCfg domain.PipelineConfig,
) (*cli.Services, func() error, error) {
	logger.Section("Bootstrap")
	defer logger.Timed("bootstrap")()

	aiServices, err := ai.Init(settings)
	if err != nil {
		return nil, nil, err
	}

	pipeline, err := buildPipeline(pipelineCfg)
	if err != nil {
		_ = aiServices.Close()
		return nil, nil, err
	}

	store := memory.NewChunkStore()
	index := bruteforce.New(store)
	snap := snapshot.NewFileStore(settings.SnapshotPath())

	source, err := factory.New().Create(settings.Source)
	if err != nil {
		// Answering from the snapshot still works without a source.
		logger.Warn("note source unavailable: %v", err)
		source = nil
	}

	retrieval := services.NewRetrievalService(aiServices.EmbeddingService, index, store)
	retrieval.SetTimeout(settings.Retrieval.Timeout)
	retrieval.SetDefaultK(settings.Retrieval.DefaultK)
	if aiServices.Transcriber != nil {
		retrieval.SetTranscriber(aiServices.Transcriber)
	}

	ingest := services.NewIngestService(source, pipeline, aiServices.EmbeddingService, store, snap)
	ingest.SetBatchSize(settings.Embedding.BatchSize)

	if snap.Exists() {
		if _, err := ingest.LoadSnapshot(ctx); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("snapshot %s not loaded: %v", snap.Path(), err)
		}
	} else {
		logger.Info("no snapshot at %s; run 'storybank sync' to build one", snap.Path())
	}

	chunks := services.NewChunkService(store)

	coach, err := services.NewCoachService(retrieval, chunks, aiServices.LLMService, settings.Coach)
	if err != nil {
		_ = aiServices.Close()
		return nil, nil, err
	}

	return &cli.Services{
		Retrieval: retrieval,
		Chunks:    chunks,
		Ingest:    ingest,
		Coach:     coach,
		Snapshot:  snap,
	}, aiServices.Close, nil
}

// buildPipeline builds the configured post-processors, falling back to the
// default section-splitting pipeline when none are configured.
func buildPipeline(cfg domain.PipelineConfig) (driven.PostProcessorPipeline, error) {
	if len(cfg.Processors) == 0 {
		return postprocessors.NewDefaultPipeline(), nil
	}
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := registry.BuildPipeline(cfg.Processors, cfg.ProcessorConfigs)
	if err != nil {
		return nil, fmt.Errorf("building ingestion pipeline: %w", err)
	}
	return pipeline, nil
}
