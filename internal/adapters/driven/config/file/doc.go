// Package file keeps storybank settings in ~/.storybank/config.toml.
//
// Secrets may instead come from the environment or a .env file; those are
// read on Load and never written back.
package file
