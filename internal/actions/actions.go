package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"fragments/internal/auth"
	"fragments/internal/convert"
	"fragments/internal/fragments"
	"fragments/internal/logging"
	"fragments/internal/mediatype"
	"fragments/internal/services"
	"fragments/internal/view"
)

// UserSource resolves the signed-in user. auth.Provider satisfies it.
type UserSource interface {
	GetUser(ctx context.Context) (auth.User, error)
}

// PickedFile is a file chosen by the user.
type PickedFile struct {
	Name string
	// Type overrides extension-based inference when set.
	Type string
	Data []byte
}

// FilePicker asks the user for one file. ok is false when the user declined.
type FilePicker interface {
	PickFile(ctx context.Context) (file *PickedFile, ok bool, err error)
}

// Actions bundles the collaborators the workflows need.
type Actions struct {
	api       fragments.API
	converter *convert.Orchestrator
	users     UserSource
	base      *slog.Logger
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures Actions.
type Option func(*Actions)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Actions) {
		if logger != nil {
			a.base = logger
		}
	}
}

// WithClock overrides the time source used for relative ages.
func WithClock(now func() time.Time) Option {
	return func(a *Actions) {
		if now != nil {
			a.now = now
		}
	}
}

// New wires the workflows.
func New(api fragments.API, users UserSource, opts ...Option) *Actions {
	a := &Actions{
		api:   api,
		users: users,
		base:  logging.NewNop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.NewComponentLogger(a.base, "actions")
	a.converter = convert.New(api, a.base)
	return a
}

func (a *Actions) user(ctx context.Context, operation string) (auth.User, error) {
	if a.users == nil {
		return nil, services.Wrap(services.ErrAuthentication, operation, "please sign in first", ErrNotSignedIn)
	}
	user, err := a.users.GetUser(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrAuthentication, operation, "load session", err)
	}
	if user == nil {
		a.logger.Debug("no signed-in user", slog.String(logging.FieldOperation, operation))
		return nil, services.Wrap(services.ErrAuthentication, operation, "please sign in first", ErrNotSignedIn)
	}
	return user, nil
}

// List returns the user's fragments as a list view-model.
func (a *Actions) List(ctx context.Context) (view.FragmentList, []fragments.Fragment, error) {
	user, err := a.user(ctx, "list")
	if err != nil {
		return view.FragmentList{}, nil, err
	}
	items, err := a.api.List(ctx, user)
	if err != nil {
		return view.FragmentList{}, nil, classify("list", err)
	}
	return view.NewFragmentList(items, a.now()), items, nil
}

// ListIDs returns only the ids of the user's fragments.
func (a *Actions) ListIDs(ctx context.Context) ([]string, error) {
	user, err := a.user(ctx, "list")
	if err != nil {
		return nil, err
	}
	ids, err := a.api.ListIDs(ctx, user)
	if err != nil {
		return nil, classify("list", err)
	}
	return ids, nil
}

// Info returns fragment metadata.
func (a *Actions) Info(ctx context.Context, id string) (*fragments.Fragment, error) {
	user, err := a.user(ctx, "info")
	if err != nil {
		return nil, err
	}
	info, err := a.api.Info(ctx, user, id)
	if err != nil {
		return nil, classify("info", err)
	}
	return info, nil
}

// Show fetches metadata and content for one fragment.
func (a *Actions) Show(ctx context.Context, id string) (view.FragmentDetail, error) {
	user, err := a.user(ctx, "show")
	if err != nil {
		return view.FragmentDetail{}, err
	}
	info, err := a.api.Info(ctx, user, id)
	if err != nil {
		return view.FragmentDetail{}, classify("show", err)
	}
	content, err := a.api.Get(ctx, user, id)
	if err != nil {
		return view.FragmentDetail{}, classify("show", err)
	}
	return view.NewFragmentDetail(*info, content), nil
}

// CreateFromText stores trimmed text as a new fragment of contentType.
func (a *Actions) CreateFromText(ctx context.Context, contentType, text string) (*fragments.Fragment, error) {
	const op = "create"
	user, err := a.user(ctx, op)
	if err != nil {
		return nil, err
	}
	contentType = mediatype.Normalize(contentType)
	if !mediatype.IsSupported(contentType) {
		return nil, services.Wrap(services.ErrValidation, op, contentType, ErrUnsupportedType)
	}
	if mediatype.InputKind(contentType) != mediatype.KindText {
		return nil, services.Wrap(services.ErrValidation, op, "image fragments are created from a file", ErrInvalidContent)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, services.Wrap(services.ErrValidation, op, "please enter some content", ErrEmptyContent)
	}
	if err := validateText(contentType, text); err != nil {
		return nil, services.Wrap(services.ErrValidation, op, err.Error(), ErrInvalidContent)
	}
	return a.create(ctx, user, fragments.Payload{Type: contentType, Data: []byte(text)})
}

// CreateFromFile stores a picked file. contentType may be empty, in which
// case it is inferred from the file.
func (a *Actions) CreateFromFile(ctx context.Context, contentType string, picker FilePicker) (*fragments.Fragment, error) {
	const op = "create"
	user, err := a.user(ctx, op)
	if err != nil {
		return nil, err
	}
	file, err := pick(ctx, op, picker)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = fileType(file)
	}
	contentType = mediatype.Normalize(contentType)
	if !mediatype.IsSupported(contentType) {
		return nil, services.Wrap(services.ErrValidation, op, fmt.Sprintf("cannot determine a supported type for %q", file.Name), ErrUnsupportedType)
	}
	if len(file.Data) == 0 {
		return nil, services.Wrap(services.ErrValidation, op, file.Name, ErrEmptyContent)
	}
	if mediatype.InputKind(contentType) == mediatype.KindText {
		if err := validateText(contentType, string(file.Data)); err != nil {
			return nil, services.Wrap(services.ErrValidation, op, err.Error(), ErrInvalidContent)
		}
	}
	return a.create(ctx, user, fragments.Payload{Type: contentType, Data: file.Data})
}

func (a *Actions) create(ctx context.Context, user auth.User, payload fragments.Payload) (*fragments.Fragment, error) {
	created, err := a.api.Create(ctx, user, payload)
	if err != nil {
		return nil, classify("create", err)
	}
	return created, nil
}

// UpdateFromText replaces a text fragment's body, keeping its stored type.
func (a *Actions) UpdateFromText(ctx context.Context, id, text string) (*fragments.Fragment, error) {
	const op = "update"
	user, err := a.user(ctx, op)
	if err != nil {
		return nil, err
	}
	info, err := a.api.Info(ctx, user, id)
	if err != nil {
		return nil, classify(op, err)
	}
	contentType := info.Type
	if mediatype.InputKind(contentType) == mediatype.KindImage {
		return nil, services.Wrap(services.ErrValidation, op, "image fragments are updated from a file", ErrInvalidContent)
	}
	if strings.TrimSpace(text) == "" {
		return nil, services.Wrap(services.ErrValidation, op, "no content entered", ErrEmptyContent)
	}
	if err := validateText(mediatype.Normalize(contentType), text); err != nil {
		return nil, services.Wrap(services.ErrValidation, op, err.Error(), ErrInvalidContent)
	}
	return a.update(ctx, user, id, fragments.Payload{Type: contentType, Data: []byte(text)})
}

// UpdateFromFile replaces a fragment's body with a picked file.
func (a *Actions) UpdateFromFile(ctx context.Context, id string, picker FilePicker) (*fragments.Fragment, error) {
	const op = "update"
	user, err := a.user(ctx, op)
	if err != nil {
		return nil, err
	}
	info, err := a.api.Info(ctx, user, id)
	if err != nil {
		return nil, classify(op, err)
	}
	file, err := pick(ctx, op, picker)
	if err != nil {
		return nil, err
	}
	stored := mediatype.Normalize(info.Type)
	if picked := fileType(file); picked != "" && picked != stored {
		return nil, services.Wrap(services.ErrValidation, op,
			fmt.Sprintf("%s is %s but fragment %s is %s", file.Name, picked, id, stored), ErrUnsupportedType)
	}
	if len(file.Data) == 0 {
		return nil, services.Wrap(services.ErrValidation, op, file.Name, ErrEmptyContent)
	}
	return a.update(ctx, user, id, fragments.Payload{Type: info.Type, Data: file.Data})
}

func (a *Actions) update(ctx context.Context, user auth.User, id string, payload fragments.Payload) (*fragments.Fragment, error) {
	updated, err := a.api.Update(ctx, user, id, payload)
	if err != nil {
		return nil, classify("update", err)
	}
	return updated, nil
}

// Delete removes a fragment.
func (a *Actions) Delete(ctx context.Context, id string) error {
	user, err := a.user(ctx, "delete")
	if err != nil {
		return err
	}
	if err := a.api.Delete(ctx, user, id); err != nil {
		return classify("delete", err)
	}
	return nil
}

// Convert looks up the fragment's type and requests it as targetType.
func (a *Actions) Convert(ctx context.Context, id, targetType string) (*convert.Converted, error) {
	const op = "convert"
	user, err := a.user(ctx, op)
	if err != nil {
		return nil, err
	}
	info, err := a.api.Info(ctx, user, id)
	if err != nil {
		return nil, classify(op, err)
	}
	converted, err := a.converter.RequestConversion(ctx, user, *info, targetType)
	if err != nil {
		return nil, classify(op, err)
	}
	return converted, nil
}

// Targets lists the conversions offered for a fragment.
func (a *Actions) Targets(ctx context.Context, id string) ([]string, error) {
	info, err := a.Info(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.converter.Targets(*info), nil
}

func pick(ctx context.Context, operation string, picker FilePicker) (*PickedFile, error) {
	if picker == nil {
		return nil, services.Wrap(services.ErrValidation, operation, "", ErrNoFileSelected)
	}
	file, ok, err := picker.PickFile(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, operation, "read file", err)
	}
	if !ok || file == nil {
		return nil, services.Wrap(services.ErrValidation, operation, "", ErrNoFileSelected)
	}
	return file, nil
}

func fileType(file *PickedFile) string {
	if file.Type != "" {
		return mediatype.Normalize(file.Type)
	}
	return mediatype.TypeForExtension(file.Name)
}

func validateText(contentType, text string) error {
	switch contentType {
	case mediatype.ApplicationJSON:
		if !json.Valid([]byte(text)) {
			return fmt.Errorf("invalid JSON format")
		}
	case mediatype.ApplicationYAML:
		var doc any
		if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
			return fmt.Errorf("invalid YAML: %w", err)
		}
	}
	return nil
}
