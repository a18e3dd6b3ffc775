// Package config loads, normalizes, and validates the TOML configuration
// shared by the reel CLI and the reeld daemon.
package config
