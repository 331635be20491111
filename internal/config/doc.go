// Package config loads, normalizes, and validates vidscribe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PROXY_URL. The Config type is built once at process start and passed by
// pointer into every service constructor; nothing in the repository reads
// configuration from package-level state.
package config
