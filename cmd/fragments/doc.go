// Package main hosts the fragments CLI.
//
// The Cobra command tree resolves configuration once per invocation, builds
// the logger, identity provider and API client from it, and hands each
// command's arguments to internal/actions. Rendering lives in internal/view;
// commands only pick the output form (table, detail, JSON, file).
package main
