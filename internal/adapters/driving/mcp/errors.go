// Package mcp provides an MCP (Model Context Protocol) server adapter for Storybank.
// It lets AI assistants query story beats while the user is talking.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
