package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fragments/internal/actions"
	"fragments/internal/auth"
	"fragments/internal/services"
	"fragments/internal/testsupport"
)

func basicOwner(t *testing.T, username, password string) string {
	t.Helper()
	user, err := auth.NewBasicUser(username, password)
	if err != nil {
		t.Fatalf("NewBasicUser: %v", err)
	}
	return user.AuthorizationHeaders().Get("Authorization")
}

func TestCLIFragmentLifecycle(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithAuthMode("basic"))

	out, _, err := runCLI(t, []string{"whoami"}, env.configPath)
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	requireContains(t, out, "Not signed in")

	out, _, err = runCLI(t, []string{"login", "--user", "alice@example.com", "--password", "pw"}, env.configPath)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	requireContains(t, out, "Signed in as alice@example.com")

	out, _, err = runCLI(t, []string{"list"}, env.configPath)
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	requireContains(t, out, "No fragments found")

	out, _, err = runCLI(t, []string{"create", "--type", "text/markdown", "--text", "  hello  "}, env.configPath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	requireContains(t, out, "Created fragment frag-001 (text/markdown, 5 Bytes)")

	reqs := env.svc.Requests()
	if got := reqs[len(reqs)-1].Authorization; got != basicOwner(t, "alice@example.com", "pw") {
		t.Fatalf("unexpected authorization header %q", got)
	}

	out, _, err = runCLI(t, []string{"list"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "frag-001")
	requireContains(t, out, "Markdown")

	out, _, err = runCLI(t, []string{"show", "frag-001"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "Type:    text/markdown")
	requireContains(t, out, "hello")

	out, _, err = runCLI(t, []string{"convert", "frag-001", "--to", "html"}, env.configPath)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if out != "<p>hello</p>\n" {
		t.Fatalf("unexpected conversion output %q", out)
	}

	out, _, err = runCLIWithInput(t, []string{"update", "frag-001"}, env.configPath, strings.NewReader("# changed"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	requireContains(t, out, "Updated fragment frag-001")
	if data, _ := env.svc.Data("frag-001"); string(data) != "# changed" {
		t.Fatalf("update not stored, got %q", data)
	}

	out, _, err = runCLI(t, []string{"delete", "frag-001"}, env.configPath)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	requireContains(t, out, "Deleted fragment frag-001")

	_, _, err = runCLI(t, []string{"show", "frag-001"}, env.configPath)
	if err == nil || services.ExitCode(err) != services.ExitFailure {
		t.Fatalf("expected failure exit for missing fragment, got %v", err)
	}

	out, _, err = runCLI(t, []string{"logout"}, env.configPath)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	requireContains(t, out, "Signed out")

	_, _, err = runCLI(t, []string{"list"}, env.configPath)
	if !errors.Is(err, actions.ErrNotSignedIn) || services.ExitCode(err) != services.ExitUsage {
		t.Fatalf("expected not-signed-in usage error, got %v", err)
	}
}

func TestCLIListJSONAndIDs(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithAuthMode("basic"))
	if _, _, err := runCLI(t, []string{"login", "-u", "bob", "-p", "pw"}, env.configPath); err != nil {
		t.Fatalf("login: %v", err)
	}
	owner := basicOwner(t, "bob", "pw")
	env.svc.Seed(owner, "text/plain", []byte("one"), time.Now().Add(-time.Hour))
	env.svc.Seed(owner, "application/json", []byte(`{"a":1}`), time.Now())

	out, _, err := runCLI(t, []string{"list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("list --json: %v", err)
	}
	requireContains(t, out, `"id": "frag-002"`)
	requireContains(t, out, `"ownerId": "`+owner+`"`)

	out, _, err = runCLI(t, []string{"list", "--ids"}, env.configPath)
	if err != nil {
		t.Fatalf("list --ids: %v", err)
	}
	ids := strings.Fields(out)
	if len(ids) != 2 {
		t.Fatalf("expected two ids, got %q", out)
	}

	before := env.svc.RequestCount()
	out, _, err = runCLI(t, []string{"info", "frag-002"}, env.configPath)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	requireContains(t, out, "Converts: application/yaml, text/plain")
	if got := env.svc.RequestCount() - before; got != 1 {
		t.Fatalf("info should issue a single request, got %d", got)
	}
}

func TestCLICreateFromFileAndConvertImage(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithAuthMode("basic"))
	if _, _, err := runCLI(t, []string{"login", "-u", "carol", "-p", "pw"}, env.configPath); err != nil {
		t.Fatalf("login: %v", err)
	}

	dir := t.TempDir()
	png := testsupport.WriteFile(t, filepath.Join(dir, "pixel.png"), testsupport.PNG())
	out, _, err := runCLI(t, []string{"create", "--file", png}, env.configPath)
	if err != nil {
		t.Fatalf("create --file: %v", err)
	}
	requireContains(t, out, "(image/png, ")

	target := filepath.Join(dir, "pixel.webp")
	out, _, err = runCLI(t, []string{"convert", "frag-001", "--to", "image/webp", "-o", target}, env.configPath)
	if err != nil {
		t.Fatalf("convert -o: %v", err)
	}
	requireContains(t, out, "Wrote image/webp")
	data, err := os.ReadFile(target)
	if err != nil || len(data) != len(testsupport.PNG()) {
		t.Fatalf("expected converted file, got %d bytes (%v)", len(data), err)
	}

	out, _, err = runCLI(t, []string{"convert", "frag-001", "--to", "gif", "--data-url"}, env.configPath)
	if err != nil {
		t.Fatalf("convert --data-url: %v", err)
	}
	requireContains(t, out, "data:image/gif;base64,")

	before := env.svc.RequestCount()
	_, _, err = runCLI(t, []string{"convert", "frag-001", "--to", "text/plain"}, env.configPath)
	if services.ExitCode(err) != services.ExitUsage {
		t.Fatalf("expected usage error for unsupported conversion, got %v", err)
	}
	// Only the metadata lookup reaches the service.
	if env.svc.RequestCount() != before+1 {
		t.Fatalf("unexpected requests for rejected conversion: %d", env.svc.RequestCount()-before)
	}
}

func TestCLICreateRequiresType(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithAuthMode("basic"))
	if _, _, err := runCLI(t, []string{"login", "-u", "dan", "-p", "pw"}, env.configPath); err != nil {
		t.Fatalf("login: %v", err)
	}
	_, _, err := runCLI(t, []string{"create", "--text", "x"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, _, err = runCLI(t, []string{"create", "--type", "application/json", "--text", "{nope"}, env.configPath)
	if !errors.Is(err, actions.ErrInvalidContent) {
		t.Fatalf("expected invalid content, got %v", err)
	}
	if env.svc.RequestCount() != 0 {
		t.Fatalf("rejected creates must not reach the service, saw %d", env.svc.RequestCount())
	}
}

func TestCLILoginRequiresCredentials(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"login"}, env.configPath)
	if !errors.Is(err, auth.ErrMissingToken) || services.ExitCode(err) != services.ExitUsage {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestCLITypesSkipsConfig(t *testing.T) {
	out, _, err := runCLI(t, []string{"types", "--config", filepath.Join(t.TempDir(), "broken.toml")}, "")
	if err != nil {
		t.Fatalf("types: %v", err)
	}
	requireContains(t, out, "text/markdown")
	requireContains(t, out, ".webp")
}

func TestCLIAPIURLFlagOverridesConfig(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithAuthMode("basic"))
	other := testsupport.NewService(t)
	if _, _, err := runCLI(t, []string{"login", "-u", "erin", "-p", "pw"}, env.configPath); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, err := runCLI(t, []string{"--api-url", other.URL(), "list"}, env.configPath); err != nil {
		t.Fatalf("list: %v", err)
	}
	if other.RequestCount() != 1 || env.svc.RequestCount() != 0 {
		t.Fatalf("expected request on override service, got %d/%d", other.RequestCount(), env.svc.RequestCount())
	}

	_, _, err := runCLI(t, []string{"--api-url", "not a url", "list"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
