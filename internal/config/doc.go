// Package config loads, normalizes, and validates fragments client
// configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as API_URL. Always obtain
// settings through this package so downstream code receives a trimmed base
// URL, canonical log formats, and clear validation errors.
package config
