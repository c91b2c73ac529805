// Package connectors provides the note sources that feed ingestion.
// Each subpackage knows how to fetch notes from one place (Notion, a YAML
// notes file) and returns them as domain.Note values.
//
// ParseNote is shared by the sources that only have a title and a block of
// text, and splits that text into named sections.
package connectors
