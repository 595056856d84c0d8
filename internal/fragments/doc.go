// Package fragments is the HTTP client for the fragments microservice.
//
// Each method maps one logical operation (list, fetch, fetch metadata,
// create, update, delete, fetch-as-type) onto a single authenticated request
// against the configured base URL. Response bodies are decoded once into a
// Content value tagged as binary, structured, or text according to the
// declared Content-Type, so callers can switch on Kind instead of re-sniffing
// headers. Non-2xx responses surface as *RequestError and transport failures
// as *NetworkError; every failure is logged before it is returned.
//
// The client holds no state between calls and never caches responses.
package fragments
