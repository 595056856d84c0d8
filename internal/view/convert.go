package view

import (
	"fmt"
	"io"
	"strings"

	"fragments/internal/convert"
	"fragments/internal/mediatype"
)

// RenderConversion prints text results verbatim and summarizes binary ones.
func RenderConversion(w io.Writer, converted *convert.Converted) error {
	if converted == nil {
		return nil
	}
	var body string
	if converted.Blob != nil {
		body = contentBody(converted.Kind, converted.Blob.Type, "", converted.Blob.Size())
	} else {
		body = contentBody(converted.Kind, converted.ContentType, converted.Text, len(converted.Text))
	}
	_, err := io.WriteString(w, body)
	return err
}

// RenderTypes prints the media type registry.
func RenderTypes(w io.Writer) error {
	supported := mediatype.Supported()
	rows := make([][]string, 0, len(supported))
	for _, t := range supported {
		targets := mediatype.AllowedTargets(t)
		convertsTo := strings.Join(targets, ", ")
		if convertsTo == "" {
			convertsTo = "-"
		}
		rows = append(rows, []string{t, mediatype.ExtensionFor(t), ClassLabel(t), mediatype.InputKind(t).String(), convertsTo})
	}
	headers := []string{"Type", "Extension", "Kind", "Input", "Converts To"}
	_, err := fmt.Fprintln(w, renderTable(headers, rows, nil))
	return err
}
