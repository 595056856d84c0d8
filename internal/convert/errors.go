package convert

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConversion reports a request to convert a fragment to its own type.
	ErrInvalidConversion = errors.New("fragment is already in the requested type")
	// ErrUnsupportedConversion reports a target the registry does not offer for the source type.
	ErrUnsupportedConversion = errors.New("conversion not supported")
	// ErrConversionFailed matches any *ConversionError.
	ErrConversionFailed = errors.New("conversion failed")
)

// ConversionError wraps a failure fetching the converted representation.
type ConversionError struct {
	FragmentID string
	Target     string
	Err        error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert fragment %s to %s: %v", e.FragmentID, e.Target, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Is(target error) bool { return target == ErrConversionFailed }
