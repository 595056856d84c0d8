// Package logging assembles structured slog loggers and formatting helpers used
// across the fragments client.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so API calls are tagged with
// their request id, operation, and fragment id. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging
