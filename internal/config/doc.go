// Package config loads and validates the frond.json (or frond.yaml)
// project configuration used by the CLI: which descriptor file to build,
// initial state, preview server settings, and remote source definitions.
package config
