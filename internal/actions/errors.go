package actions

import (
	"errors"
	"net/http"

	"fragments/internal/convert"
	"fragments/internal/fragments"
	"fragments/internal/services"
)

var (
	ErrNotSignedIn     = errors.New("not signed in")
	ErrEmptyContent    = errors.New("content is empty")
	ErrInvalidContent  = errors.New("content does not match its type")
	ErrNoFileSelected  = errors.New("no file selected")
	ErrUnsupportedType = errors.New("unsupported fragment type")
)

// classify tags an error returned by a collaborator with a services marker.
func classify(operation string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, convert.ErrInvalidConversion), errors.Is(err, convert.ErrUnsupportedConversion):
		return services.Wrap(services.ErrValidation, operation, "", err)
	}
	switch fragments.StatusCode(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		return services.Wrap(services.ErrAuthentication, operation, "service rejected credentials", err)
	case http.StatusBadRequest, http.StatusUnsupportedMediaType:
		return services.Wrap(services.ErrValidation, operation, "service rejected request", err)
	}
	return services.Wrap(services.ErrRemote, operation, "", err)
}
