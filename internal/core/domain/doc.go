// Package domain defines the core business entities for Storybank.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Note: A structured note pulled from a note source
//   - Chunk: A retrievable fragment of a note, optionally embedded
//   - ChunkSet: An immutable view of the store used for ranking
//   - ScoredResult / AnswerItem: Ranked retrieval output
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
