// Package driving holds the use cases the outer surfaces call: answering a
// question, coaching a live answer, browsing chunks, syncing from the note
// source and editing settings. The CLI, TUI, web and MCP adapters only talk
// to these interfaces; internal/core/services implements them.
package driving
