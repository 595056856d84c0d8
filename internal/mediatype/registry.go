package mediatype

import (
	"mime"
	"path/filepath"
	"strings"
)

// Kind classifies how fragment content of a given type is entered by the user.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

const (
	TextPlain       = "text/plain"
	TextMarkdown    = "text/markdown"
	TextHTML        = "text/html"
	TextCSV         = "text/csv"
	ApplicationJSON = "application/json"
	ApplicationYAML = "application/yaml"
	ImagePNG        = "image/png"
	ImageJPEG       = "image/jpeg"
	ImageWebP       = "image/webp"
	ImageAVIF       = "image/avif"
	ImageGIF        = "image/gif"
)

type entry struct {
	mediaType string
	extension string
	targets   []string
}

// Registry order is also the order Supported reports.
var registry = []entry{
	{TextPlain, ".txt", nil},
	{TextMarkdown, ".md", []string{TextHTML, TextPlain}},
	{TextHTML, ".html", []string{TextPlain}},
	{TextCSV, ".csv", []string{TextPlain, ApplicationJSON}},
	{ApplicationJSON, ".json", []string{ApplicationYAML, TextPlain}},
	{ApplicationYAML, ".yaml", []string{TextPlain}},
	{ImagePNG, ".png", []string{ImageJPEG, ImageWebP, ImageGIF, ImageAVIF}},
	{ImageJPEG, ".jpg", []string{ImagePNG, ImageWebP, ImageGIF, ImageAVIF}},
	{ImageWebP, ".webp", []string{ImagePNG, ImageJPEG, ImageGIF, ImageAVIF}},
	{ImageAVIF, ".avif", []string{ImagePNG, ImageJPEG, ImageWebP, ImageGIF}},
	{ImageGIF, ".gif", []string{ImagePNG, ImageJPEG, ImageWebP, ImageAVIF}},
}

// Extensions accepted on upload that are not the canonical one above.
var extensionAliases = map[string]string{
	".jpeg":     ImageJPEG,
	".yml":      ApplicationYAML,
	".htm":      TextHTML,
	".markdown": TextMarkdown,
	".text":     TextPlain,
}

var (
	byType      = make(map[string]entry, len(registry))
	byExtension = make(map[string]string, len(registry)+len(extensionAliases))
)

func init() {
	for _, e := range registry {
		byType[e.mediaType] = e
		byExtension[e.extension] = e.mediaType
	}
	for ext, mediaType := range extensionAliases {
		byExtension[ext] = mediaType
	}
}

// Normalize strips MIME parameters and lowercases the type so values such as
// "text/plain; charset=utf-8" compare equal to their registry key.
func Normalize(mediaType string) string {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		return parsed
	}
	if idx := strings.IndexByte(mediaType, ';'); idx >= 0 {
		mediaType = mediaType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// AllowedTargets returns the conversion targets the service offers for
// sourceType, in presentation order. Unknown types yield nil. The returned
// slice is a copy and may be modified by the caller.
func AllowedTargets(sourceType string) []string {
	e, ok := byType[Normalize(sourceType)]
	if !ok || len(e.targets) == 0 {
		return nil
	}
	out := make([]string, len(e.targets))
	copy(out, e.targets)
	return out
}

// CanConvert reports whether target is a registered conversion of source.
func CanConvert(sourceType, targetType string) bool {
	target := Normalize(targetType)
	for _, t := range byType[Normalize(sourceType)].targets {
		if t == target {
			return true
		}
	}
	return false
}

// ExtensionFor returns the file extension (with leading dot) used to request
// mediaType from the service, or "" when the type is not registered.
func ExtensionFor(mediaType string) string {
	return byType[Normalize(mediaType)].extension
}

// TypeForExtension maps a file name or extension back to a registered type.
func TypeForExtension(nameOrExt string) string {
	return byExtension[strings.ToLower(filepath.Ext(nameOrExt))]
}

// IsSupported reports whether mediaType is in the registry.
func IsSupported(mediaType string) bool {
	_, ok := byType[Normalize(mediaType)]
	return ok
}

// Supported lists every registered type in registry order.
func Supported() []string {
	out := make([]string, 0, len(registry))
	for _, e := range registry {
		out = append(out, e.mediaType)
	}
	return out
}

// InputKind reports whether content of mediaType is entered as text or
// supplied as an image file.
func InputKind(mediaType string) Kind {
	mediaType = Normalize(mediaType)
	switch {
	case strings.HasPrefix(mediaType, "text/"), strings.HasPrefix(mediaType, "application/"):
		return KindText
	case strings.HasPrefix(mediaType, "image/"):
		return KindImage
	default:
		return KindUnknown
	}
}

// DisplayClass returns the presentation class for a fragment type.
func DisplayClass(mediaType string) string {
	mediaType = Normalize(mediaType)
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return "image-fragment"
	case mediaType == ApplicationJSON:
		return "json-fragment"
	case mediaType == TextMarkdown:
		return "markdown-fragment"
	case mediaType == TextHTML:
		return "html-fragment"
	case mediaType == TextCSV:
		return "csv-fragment"
	case mediaType == ApplicationYAML:
		return "yaml-fragment"
	default:
		return "text-fragment"
	}
}
