// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ChunkStore: Authoritative in-memory corpus
//   - SnapshotStore: Persisted form of the corpus (flat file)
//   - SimilarityIndex: Ranks embedded chunks against a query vector
//   - EmbeddingService: Generates vector embeddings
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - NoteSource: Without it, the store is only loaded from the snapshot.
//   - Transcriber: Without it, audio queries are rejected.
//   - EmbeddingCache: Without it, every text is embedded by the provider.
//   - LLMService: Without it, coaching cues quote the beat instead of
//     generating an answer.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or postprocessor package
package driven
