// Package services defines shared utilities consumed by the API client, the
// conversion orchestrator, and the CLI actions.
//
// Key responsibilities:
//   - Context helpers that stamp request ids, operation names, and fragment
//     ids for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into consistent exit codes.
package services
