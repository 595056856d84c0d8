package view

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"fragments/internal/mediatype"
)

const timestampLayout = "2006-01-02 15:04:05 MST"

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatSize renders a byte count in base-1024 units with at most two
// decimals: 0 Bytes, 512 Bytes, 1.5 KB, 2 MB. Values past GB stay in GB.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	rounded := strconv.FormatFloat(value, 'f', 2, 64)
	rounded = strings.TrimRight(strings.TrimRight(rounded, "0"), ".")
	return rounded + " " + sizeUnits[unit]
}

// FormatAge renders t relative to now ("3 minutes ago").
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// FormatTimestamp renders t for detail views. Zero times render empty.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}

// ClassLabel returns a human label for a fragment type ("Markdown", "Image").
func ClassLabel(mediaType string) string {
	class := strings.TrimSuffix(mediatype.DisplayClass(mediaType), "-fragment")
	return cases.Title(language.Und).String(class)
}
