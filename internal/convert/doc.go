// Package convert requests alternate representations of stored fragments.
//
// The Orchestrator checks a requested target against the media type registry
// before touching the network, so same-type and unsupported requests fail
// fast. Accepted requests are fetched through the fragments client and the
// decoded body is normalized into a Converted value: images become a Blob
// that can be written to disk or rendered as a data URL, everything else
// becomes display text.
package convert
