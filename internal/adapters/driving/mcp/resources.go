package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Storybank resources.
	uriScheme = "storybank://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "chunks",
		Name:        "chunks",
		Description: "Summary of every stored story beat",
		MIMEType:    "application/json",
	}, s.handleChunksResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "notes/{noteId}/chunks",
		Name:        "note-chunks",
		Description: "Story beats that came from one note",
		MIMEType:    "application/json",
	}, s.handleNoteChunksResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "chunks/{chunkId}",
		Name:        "chunk-text",
		Description: "Text of a single story beat",
		MIMEType:    "text/plain",
	}, s.handleChunkTextResource)
}

// chunkInfo is the listing form of a chunk.
type chunkInfo struct {
	ID      string `json:"id"`
	NoteID  string `json:"note_id"`
	Section string `json:"section"`
	Title   string `json:"title,omitempty"`
}

// handleChunksResource lists every stored chunk.
func (s *Server) handleChunksResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Chunks == nil {
		return jsonResult(req.Params.URI, []chunkInfo{})
	}

	chunks, err := s.ports.Chunks.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	return jsonResult(req.Params.URI, toInfos(chunks))
}

// handleNoteChunksResource lists the chunks of one note.
func (s *Server) handleNoteChunksResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Chunks == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// storybank://notes/{noteId}/chunks
	noteID := extractNoteID(req.Params.URI)
	if noteID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	chunks, err := s.ports.Chunks.List(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResult(req.Params.URI, toInfos(chunks))
}

// handleChunkTextResource returns the text of one chunk.
func (s *Server) handleChunkTextResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Chunks == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// storybank://chunks/{chunkId}
	chunkID := extractChunkID(req.Params.URI)
	if chunkID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	chunk, err := s.ports.Chunks.Get(ctx, chunkID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting chunk: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     chunk.Text,
		}},
	}, nil
}

func toInfos(chunks []domain.Chunk) []chunkInfo {
	infos := make([]chunkInfo, len(chunks))
	for i := range chunks {
		infos[i] = chunkInfo{
			ID:      chunks[i].ID,
			NoteID:  chunks[i].NoteID,
			Section: chunks[i].Section,
			Title:   chunks[i].Metadata["title"],
		}
	}
	return infos
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractNoteID extracts the note ID from a URI like storybank://notes/{noteId}/chunks.
func extractNoteID(uri string) string {
	const prefix = uriScheme + "notes/"
	const suffix = "/chunks"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}

// extractChunkID extracts the chunk ID from a URI like storybank://chunks/{chunkId}.
func extractChunkID(uri string) string {
	const prefix = uriScheme + "chunks/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
