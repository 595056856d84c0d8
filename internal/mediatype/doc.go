// Package mediatype holds the static table of fragment content types the
// client understands: which conversions the fragments service offers for each
// source type, and the file extension used to request each representation.
//
// The registry is advisory. It narrows the choices offered to the user and
// rejects obviously invalid conversions before any network I/O, but the
// service remains the authority. Unknown types therefore degrade to empty
// results rather than errors.
package mediatype
