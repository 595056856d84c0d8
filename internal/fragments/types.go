package fragments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Fragment is the metadata the service keeps for a stored fragment.
type Fragment struct {
	ID      string    `json:"id"`
	OwnerID string    `json:"ownerId"`
	Type    string    `json:"type"`
	Size    int64     `json:"size"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// Payload is the body of a create or update request.
type Payload struct {
	Type string
	Data []byte
}

// Kind tags how a response body was decoded.
type Kind int

const (
	KindText Kind = iota
	KindStructured
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindStructured:
		return "structured"
	case KindBinary:
		return "binary"
	default:
		return "text"
	}
}

// Content is a decoded fragment body.
type Content struct {
	Kind Kind
	// Type is the Content-Type the service declared.
	Type string
	// Data holds the raw body for every kind.
	Data []byte
	// Value holds the parsed document for KindStructured.
	Value any
}

// Text returns the body as a string. Structured content is pretty-printed.
func (c Content) Text() string {
	if c.Kind == KindStructured {
		if pretty, err := c.Pretty(); err == nil {
			return pretty
		}
	}
	return string(c.Data)
}

// Pretty indents structured content with two spaces. It works on the raw
// body, so object keys keep the order the service sent them in.
func (c Content) Pretty() (string, error) {
	if c.Kind != KindStructured {
		return "", fmt.Errorf("pretty print %s content", c.Kind)
	}
	return indentJSON(c.Data)
}

// Size returns the body length in bytes.
func (c Content) Size() int { return len(c.Data) }

// decodeContent implements the three-way dispatch on the declared type:
// image/* is binary, anything mentioning json is structured, the rest is text.
func decodeContent(contentType string, body []byte) (Content, error) {
	content := Content{Type: contentType, Data: body}
	lowered := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(lowered, "image/"):
		content.Kind = KindBinary
	case strings.Contains(lowered, "json"):
		value, err := parseJSON(body)
		if err != nil {
			return Content{}, fmt.Errorf("%w: %s body: %w", ErrDecode, contentType, err)
		}
		content.Kind = KindStructured
		content.Value = value
	default:
		content.Kind = KindText
	}
	return content, nil
}

func parseJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return value, nil
}

func indentJSON(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(body), "", "  "); err != nil {
		return "", fmt.Errorf("indent json: %w", err)
	}
	return buf.String(), nil
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type listResponse struct {
	Status    string     `json:"status"`
	Fragments []Fragment `json:"fragments"`
}

type listIDsResponse struct {
	Status    string   `json:"status"`
	Fragments []string `json:"fragments"`
}

type fragmentResponse struct {
	Status   string    `json:"status"`
	Fragment *Fragment `json:"fragment"`
}

type errorResponse struct {
	Status string    `json:"status"`
	Error  *apiError `json:"error"`
}
