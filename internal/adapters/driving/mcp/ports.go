package mcp

import (
	"github.com/custodia-labs/storybank/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Retrieval answers queries.
	Retrieval driving.RetrievalService

	// Chunks reads stored chunks. Optional; without it get_chunk and the
	// chunk resources report not found.
	Chunks driving.ChunkService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
