package actions_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fragments/internal/actions"
	"fragments/internal/auth"
	"fragments/internal/convert"
	"fragments/internal/fragments"
	"fragments/internal/services"
	"fragments/internal/testsupport"
)

type staticUsers struct {
	user auth.User
	err  error
}

func (s staticUsers) GetUser(context.Context) (auth.User, error) { return s.user, s.err }

type stubPicker struct {
	file *actions.PickedFile
	ok   bool
	err  error
}

func (p stubPicker) PickFile(context.Context) (*actions.PickedFile, bool, error) {
	return p.file, p.ok, p.err
}

type harness struct {
	svc     *testsupport.Service
	user    testsupport.User
	actions *actions.Actions
}

func newHarness(t *testing.T) harness {
	t.Helper()
	svc := testsupport.NewService(t)
	client, err := fragments.New(svc.URL())
	if err != nil {
		t.Fatalf("fragments.New: %v", err)
	}
	user := testsupport.NewUser("alice")
	return harness{svc: svc, user: user, actions: actions.New(client, staticUsers{user: user})}
}

func TestSignedOutActionsFailWithoutRequests(t *testing.T) {
	svc := testsupport.NewService(t)
	client, err := fragments.New(svc.URL())
	if err != nil {
		t.Fatalf("fragments.New: %v", err)
	}
	a := actions.New(client, staticUsers{})
	ctx := context.Background()

	calls := map[string]error{}
	_, _, calls["list"] = a.List(ctx)
	_, calls["show"] = a.Show(ctx, "x")
	_, calls["create"] = a.CreateFromText(ctx, "text/plain", "hi")
	_, calls["update"] = a.UpdateFromText(ctx, "x", "hi")
	_, calls["convert"] = a.Convert(ctx, "x", "text/html")
	calls["delete"] = a.Delete(ctx, "x")

	for name, err := range calls {
		if !errors.Is(err, actions.ErrNotSignedIn) || !errors.Is(err, services.ErrAuthentication) {
			t.Fatalf("%s: expected ErrNotSignedIn, got %v", name, err)
		}
	}
	if svc.RequestCount() != 0 {
		t.Fatalf("expected no requests while signed out, got %d", svc.RequestCount())
	}
}

func TestCreateFromTextTrimsAndValidates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created, err := h.actions.CreateFromText(ctx, "text/plain", "  hello \n")
	if err != nil {
		t.Fatalf("CreateFromText: %v", err)
	}
	if data, _ := h.svc.Data(created.ID); string(data) != "hello" {
		t.Fatalf("expected trimmed body, got %q", data)
	}

	if _, err := h.actions.CreateFromText(ctx, "text/plain", "   "); !errors.Is(err, actions.ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if _, err := h.actions.CreateFromText(ctx, "application/json", "{bad"); !errors.Is(err, actions.ErrInvalidContent) {
		t.Fatalf("expected ErrInvalidContent for json, got %v", err)
	}
	if _, err := h.actions.CreateFromText(ctx, "application/yaml", "a: [1, 2"); !errors.Is(err, actions.ErrInvalidContent) {
		t.Fatalf("expected ErrInvalidContent for yaml, got %v", err)
	}
	if _, err := h.actions.CreateFromText(ctx, "image/png", "abc"); !errors.Is(err, actions.ErrInvalidContent) {
		t.Fatalf("expected image text to be rejected, got %v", err)
	}
	if _, err := h.actions.CreateFromText(ctx, "application/pdf", "abc"); !errors.Is(err, actions.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if h.svc.RequestCount() != 1 {
		t.Fatalf("rejected input must not reach the service, saw %d requests", h.svc.RequestCount())
	}

	if _, err := h.actions.CreateFromText(ctx, "application/json", `{"ok":true}`); err != nil {
		t.Fatalf("valid json rejected: %v", err)
	}
}

func TestCreateFromFileInfersType(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	png := testsupport.PNG()

	created, err := h.actions.CreateFromFile(ctx, "", stubPicker{file: &actions.PickedFile{Name: "cat.PNG", Data: png}, ok: true})
	if err != nil {
		t.Fatalf("CreateFromFile: %v", err)
	}
	if created.Type != "image/png" {
		t.Fatalf("expected inferred image/png, got %q", created.Type)
	}

	_, err = h.actions.CreateFromFile(ctx, "", stubPicker{ok: false})
	if !errors.Is(err, actions.ErrNoFileSelected) {
		t.Fatalf("expected ErrNoFileSelected, got %v", err)
	}
	_, err = h.actions.CreateFromFile(ctx, "", stubPicker{file: &actions.PickedFile{Name: "notes.pdf", Data: []byte("x")}, ok: true})
	if !errors.Is(err, actions.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestUpdateKeepsStoredType(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	frag := h.svc.Seed(h.user.Owner(), "text/markdown", []byte("# one"), time.Now())

	updated, err := h.actions.UpdateFromText(ctx, frag.ID, "# two")
	if err != nil {
		t.Fatalf("UpdateFromText: %v", err)
	}
	if updated.Type != "text/markdown" {
		t.Fatalf("type changed to %q", updated.Type)
	}
	reqs := h.svc.Requests()
	last := reqs[len(reqs)-1]
	if last.Method != "PUT" || last.ContentType != "text/markdown" || string(last.Body) != "# two" {
		t.Fatalf("unexpected update request %+v", last)
	}

	img := h.svc.Seed(h.user.Owner(), "image/png", testsupport.PNG(), time.Now())
	if _, err := h.actions.UpdateFromText(ctx, img.ID, "text"); !errors.Is(err, actions.ErrInvalidContent) {
		t.Fatalf("expected image text update to be rejected, got %v", err)
	}
	_, err = h.actions.UpdateFromFile(ctx, img.ID, stubPicker{file: &actions.PickedFile{Name: "x.jpg", Data: []byte("x")}, ok: true})
	if !errors.Is(err, actions.ErrUnsupportedType) {
		t.Fatalf("expected mismatched file to be rejected, got %v", err)
	}
	if _, err := h.actions.UpdateFromFile(ctx, img.ID, stubPicker{file: &actions.PickedFile{Name: "y.png", Data: []byte("new")}, ok: true}); err != nil {
		t.Fatalf("UpdateFromFile: %v", err)
	}
	if data, _ := h.svc.Data(img.ID); string(data) != "new" {
		t.Fatalf("expected replaced image body, got %q", data)
	}
}

func TestShowCombinesInfoAndContent(t *testing.T) {
	h := newHarness(t)
	frag := h.svc.Seed(h.user.Owner(), "application/json", []byte(`{"b":1,"a":"x"}`), time.Now())

	detail, err := h.actions.Show(context.Background(), frag.ID)
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if detail.Fragment.ID != frag.ID || detail.Class != "json-fragment" {
		t.Fatalf("unexpected detail %+v", detail)
	}
	if detail.Content == nil || detail.Content.Text() != "{\n  \"b\": 1,\n  \"a\": \"x\"\n}" {
		t.Fatalf("unexpected content %+v", detail.Content)
	}
}

func TestConvertAndDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	frag := h.svc.Seed(h.user.Owner(), "text/markdown", []byte("hi"), time.Now())

	out, err := h.actions.Convert(ctx, frag.ID, "text/html")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if out.Text != "<p>hi</p>\n" {
		t.Fatalf("unexpected conversion %q", out.Text)
	}

	_, err = h.actions.Convert(ctx, frag.ID, "image/png")
	if !errors.Is(err, convert.ErrUnsupportedConversion) || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	targets, err := h.actions.Targets(ctx, frag.ID)
	if err != nil || strings.Join(targets, ",") != "text/html,text/plain" {
		t.Fatalf("unexpected targets %v (%v)", targets, err)
	}

	if err := h.actions.Delete(ctx, frag.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	err = h.actions.Delete(ctx, frag.ID)
	if fragments.StatusCode(err) != 404 || !errors.Is(err, services.ErrRemote) {
		t.Fatalf("expected remote 404 on second delete, got %v", err)
	}
}

func TestListBuildsViewModel(t *testing.T) {
	h := newHarness(t)
	now := time.Now()
	h.svc.Seed(h.user.Owner(), "text/plain", []byte("a"), now.Add(-time.Hour))
	newest := h.svc.Seed(h.user.Owner(), "text/csv", []byte("b"), now)

	list, items, err := h.actions.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || len(list.Rows) != 2 || list.Rows[0].ID != newest.ID {
		t.Fatalf("unexpected list %+v", list.Rows)
	}

	ids, err := h.actions.ListIDs(context.Background())
	if err != nil || len(ids) != 2 {
		t.Fatalf("unexpected ids %v (%v)", ids, err)
	}
}
