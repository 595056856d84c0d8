package view

import (
	"encoding/json"
	"io"

	"fragments/internal/fragments"
)

// RenderJSON writes v as two-space indented JSON, the same layout used for
// structured fragment bodies. Empty listings are written as [] rather than
// null so scripts can iterate without a guard.
func RenderJSON(w io.Writer, v any) error {
	switch list := v.(type) {
	case []fragments.Fragment:
		if list == nil {
			v = []fragments.Fragment{}
		}
	case []string:
		if list == nil {
			v = []string{}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
