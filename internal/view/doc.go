// Package view turns fragments, decoded content and conversion results into
// terminal output. Each screen is a pair: a constructor that builds an
// immutable view-model from domain values, and a Render function that writes
// it to an io.Writer.
package view
