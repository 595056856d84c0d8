package convert

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"fragments/internal/auth"
	"fragments/internal/fragments"
	"fragments/internal/logging"
	"fragments/internal/mediatype"
	"fragments/internal/services"
)

// Fetcher is the slice of the fragments client the orchestrator needs.
type Fetcher interface {
	GetAs(ctx context.Context, user auth.User, id, extension string) (*fragments.Content, error)
}

// Blob is binary converted content.
type Blob struct {
	Type string
	Data []byte
}

// Size returns the blob length in bytes.
func (b *Blob) Size() int { return len(b.Data) }

// DataURL encodes the blob as a base64 data: URL suitable for inline display.
func (b *Blob) DataURL() string {
	return "data:" + b.Type + ";base64," + base64.StdEncoding.EncodeToString(b.Data)
}

// Converted is a normalized conversion result. Exactly one of Text and Blob
// is meaningful, selected by Kind.
type Converted struct {
	FragmentID string
	// Type is the requested target type.
	Type string
	// ContentType is what the service declared for the body.
	ContentType string
	Kind        fragments.Kind
	Text        string
	Blob        *Blob
}

// IsBinary reports whether the result carries a Blob.
func (c *Converted) IsBinary() bool { return c.Kind == fragments.KindBinary }

// Orchestrator validates and performs conversion requests.
type Orchestrator struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// New creates an orchestrator over fetcher.
func New(fetcher Fetcher, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		fetcher: fetcher,
		logger:  logging.NewComponentLogger(logger, "convert"),
	}
}

// Targets lists the conversions available for fragment in presentation order.
func (o *Orchestrator) Targets(fragment fragments.Fragment) []string {
	return mediatype.AllowedTargets(fragment.Type)
}

// RequestConversion fetches fragment converted to targetType.
func (o *Orchestrator) RequestConversion(ctx context.Context, user auth.User, fragment fragments.Fragment, targetType string) (*Converted, error) {
	ctx = services.WithFragmentID(ctx, fragment.ID)
	logger := logging.WithContext(ctx, o.logger)

	source := mediatype.Normalize(fragment.Type)
	target := mediatype.Normalize(targetType)
	if target == source {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConversion, source)
	}
	if !mediatype.CanConvert(source, target) {
		return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, source, targetType)
	}
	extension := mediatype.ExtensionFor(target)
	if extension == "" {
		return nil, fmt.Errorf("%w: no extension registered for %s", ErrUnsupportedConversion, target)
	}

	logger.Debug("requesting conversion",
		slog.String("source", source),
		slog.String("target", target),
	)
	content, err := o.fetcher.GetAs(ctx, user, fragment.ID, extension)
	if err != nil {
		convErr := &ConversionError{FragmentID: fragment.ID, Target: target, Err: err}
		logger.Warn("conversion failed", logging.Error(convErr))
		return nil, convErr
	}

	out := &Converted{
		FragmentID:  fragment.ID,
		Type:        target,
		ContentType: content.Type,
		Kind:        content.Kind,
	}
	switch content.Kind {
	case fragments.KindBinary:
		blobType := mediatype.Normalize(content.Type)
		if blobType == "" {
			blobType = target
		}
		out.Blob = &Blob{Type: blobType, Data: content.Data}
	default:
		out.Text = content.Text()
	}
	logger.Info("converted fragment",
		slog.String("target", target),
		slog.String("kind", content.Kind.String()),
		slog.Int("bytes", content.Size()),
	)
	return out, nil
}
