// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Retrieval answers queries against the chunk store, ingestion rebuilds
// the store from a note source, and settings map the config file onto
// domain.AppSettings.
package services
