// Package logging assembles structured slog loggers and formatting helpers used
// across vidscribe.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so request handlers and the
// orchestrators tag log lines with correlation IDs and operation names. A
// no-op logger is provided for tests and wiring code that cannot fail.
package logging
