// Package tui provides an interactive terminal interface for asking
// questions of the story bank. It is a driving adapter: all work goes
// through the driving ports.
package tui

import (
	"github.com/custodia-labs/storybank/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Retrieval answers questions.
	Retrieval driving.RetrievalService

	// Chunks loads full chunk text for the detail view. Optional.
	Chunks driving.ChunkService

	// Coach enables the coaching view. Optional.
	Coach driving.CoachService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(retrieval driving.RetrievalService, chunks driving.ChunkService) *Ports {
	return &Ports{
		Retrieval: retrieval,
		Chunks:    chunks,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
