package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

// AnswerInput is the input schema for the answer tool.
type AnswerInput struct {
	Query string `json:"query" jsonschema:"what the user is talking about, in their own words"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of story beats to return (default from settings)"`
}

// AnswerOutput is the output schema for the answer tool.
type AnswerOutput struct {
	Items []domain.AnswerItem `json:"items"`
	Count int                 `json:"count"`
}

// GetChunkInput is the input schema for the get_chunk tool.
type GetChunkInput struct {
	ID string `json:"id" jsonschema:"chunk id as returned by answer"`
}

// ChunkOutput describes one stored chunk.
type ChunkOutput struct {
	ID       string            `json:"id"`
	NoteID   string            `json:"note_id"`
	Section  string            `json:"section"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "answer",
		Description: "Find the story beats most relevant to a spoken or typed query",
	}, s.handleAnswer)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_chunk",
		Description: "Fetch one story beat by id",
	}, s.handleGetChunk)
}

// handleAnswer handles the answer tool invocation.
func (s *Server) handleAnswer(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnswerInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	k := input.K
	if k < 0 {
		k = 0
	}

	items, err := s.ports.Retrieval.Answer(ctx, input.Query, k)
	if err != nil {
		return nil, AnswerOutput{}, err
	}

	return nil, AnswerOutput{Items: items, Count: len(items)}, nil
}

// handleGetChunk handles the get_chunk tool invocation.
func (s *Server) handleGetChunk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetChunkInput,
) (*mcp.CallToolResult, ChunkOutput, error) {
	if s.ports.Chunks == nil {
		return nil, ChunkOutput{}, fmt.Errorf("chunk %s: %w", input.ID, domain.ErrNotFound)
	}

	chunk, err := s.ports.Chunks.Get(ctx, input.ID)
	if err != nil {
		return nil, ChunkOutput{}, err
	}

	return nil, toChunkOutput(chunk), nil
}

func toChunkOutput(c *domain.Chunk) ChunkOutput {
	return ChunkOutput{
		ID:       c.ID,
		NoteID:   c.NoteID,
		Section:  c.Section,
		Text:     c.Text,
		Metadata: domain.CloneMetadata(c.Metadata),
	}
}
