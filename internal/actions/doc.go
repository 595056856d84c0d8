// Package actions implements the user-facing fragment workflows on top of
// the API client, the conversion orchestrator and the identity provider.
//
// Every action resolves the signed-in user first and fails with
// ErrNotSignedIn when there is none. Failures are tagged with the
// internal/services markers so the CLI can map them to exit codes.
package actions
