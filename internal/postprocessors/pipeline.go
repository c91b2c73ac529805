// Package postprocessors turns notes into retrievable chunks.
//
// A note passes through an ordered list of processors. The first one sees
// no chunks and must cut the note's sections into chunks; later ones rewrite
// or drop what they receive.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driven"
	"github.com/custodia-labs/storybank/internal/logger"
)

var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline runs processors in order.
type Pipeline struct {
	stages []driven.PostProcessor
}

// NewPipeline returns a pipeline running stages in the given order.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process feeds note through every stage. Cancellation is checked between
// stages, so a long ingestion stops at the next note boundary at worst.
func (p *Pipeline) Process(ctx context.Context, note *domain.Note) ([]domain.Chunk, error) {
	if note == nil {
		return nil, fmt.Errorf("note is nil: %w", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := stage.Process(ctx, note, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", stage.Name(), err)
		}
		logger.Debug("%s: note %s, %d -> %d chunks", stage.Name(), note.ID, len(chunks), len(out))
		chunks = out
	}
	return chunks, nil
}

// Add appends a stage.
func (p *Pipeline) Add(stage driven.PostProcessor) {
	p.stages = append(p.stages, stage)
}

// Len is the number of stages.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

// Names lists stage names in run order.
func (p *Pipeline) Names() []string {
	out := make([]string, 0, len(p.stages))
	for _, stage := range p.stages {
		out = append(out, stage.Name())
	}
	return out
}
