// Package services defines shared utilities consumed by the orchestrators, the
// media engine adapter and the HTTP surface.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers and operation names
//     for logging.
//   - Structured error markers plus the Wrap and Tag helpers that classify
//     failures (invalid input, precondition, external tool, postcondition)
//     so callers can map them to HTTP statuses and history records.
package services
