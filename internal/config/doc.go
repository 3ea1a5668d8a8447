// Package config loads, normalizes, and validates replay configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), loads a .env file from the working directory, reads TOML files,
// and honours environment fallbacks such as YOUTUBE_API_KEYS, DATABASE_URL,
// and REDIS_URL. The Config type centralizes every knob the fetcher, API
// server, and CLI need so credentials, channel overrides, and retry limits are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
