// Package api defines wire-format types and converters for the HTTP API. It
// translates internal history, dependency and preflight models into
// transport-friendly DTOs so handlers and the CLI never couple to storage types.
//
// # Key Types
//
// AudioResponse and TranscriptError: the extraction endpoints' payloads. Their
// nullable fields are pointers so "null" is written explicitly rather than
// omitted.
//
// DaemonStatus: running state, paths, proxy display, dependency and directory
// checks, and history counts.
//
// HistoryEntry/HistoryListResponse: recorded operations, newest first.
//
// # Design Notes
//
// DTOs use snake_case JSON tags to match the extraction endpoints that existing
// clients already consume. Timestamps use RFC3339 with milliseconds.
package api
