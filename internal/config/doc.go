// Package config loads, normalizes, and validates lightbox configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, overlays .env files, and honours environment
// fallbacks such as LIGHTBOX_ACCOUNT_ID and LIGHTBOX_UPLOAD_TOKEN. The Config
// type centralizes every knob the daemon and CLI need, allowing media store
// and staging directories plus collaborator credentials to be discovered in
// one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
