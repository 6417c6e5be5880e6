// Package config loads, normalizes, and validates shotlist configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SHOTLIST_LOG_LEVEL. The Config type centralizes every knob the classifier,
// probe cache, watcher and CLI need so they can be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
