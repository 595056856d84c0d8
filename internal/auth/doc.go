// Package auth supplies the authenticated-user capability consumed by the
// fragments API client and a small file-backed identity provider for the CLI.
//
// A User only knows how to produce the authorization headers for the next
// request. TokenUser wraps an identity-provider ID token (a JWT issued by the
// hosted sign-in flow) and exposes its username and expiry without verifying
// the signature; the fragments service performs verification. BasicUser covers
// the service's development mode that accepts HTTP basic credentials.
package auth
