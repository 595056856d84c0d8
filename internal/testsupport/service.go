package testsupport

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"fragments/internal/fragments"
	"fragments/internal/mediatype"
)

// RecordedRequest captures what the fake service received.
type RecordedRequest struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	ContentType   string
	RequestID     string
	Body          []byte
}

type storedFragment struct {
	meta fragments.Fragment
	data []byte
}

// Service is an in-memory stand-in for the fragments microservice.
type Service struct {
	t      testing.TB
	server *httptest.Server

	mu        sync.Mutex
	fragments map[string]*storedFragment
	requests  []RecordedRequest
	nextID    int
	now       func() time.Time
	failWith  int
}

// NewService starts a fake fragments service and registers its shutdown.
func NewService(t testing.TB) *Service {
	t.Helper()
	s := &Service{
		t:         t,
		fragments: make(map[string]*storedFragment),
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.server.Close)
	return s
}

// URL returns the service base URL.
func (s *Service) URL() string { return s.server.URL }

// Requests returns a copy of every request received so far.
func (s *Service) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// RequestCount returns the number of requests received so far.
func (s *Service) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// FailWith makes every subsequent request answer with status.
func (s *Service) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = status
}

// Seed stores a fragment directly, bypassing HTTP.
func (s *Service) Seed(ownerID, contentType string, data []byte, created time.Time) fragments.Fragment {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	meta := fragments.Fragment{
		ID:      fmt.Sprintf("frag-%03d", s.nextID),
		OwnerID: ownerID,
		Type:    contentType,
		Size:    int64(len(data)),
		Created: created.UTC(),
		Updated: created.UTC(),
	}
	s.fragments[meta.ID] = &storedFragment{meta: meta, data: append([]byte(nil), data...)}
	return meta
}

// Data returns the stored body of id.
func (s *Service) Data(id string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fragments[id]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), f.data...), true
}

func (s *Service) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		RawQuery:      r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		RequestID:     r.Header.Get("X-Request-Id"),
		Body:          body,
	})

	if s.failWith != 0 {
		writeError(w, s.failWith, http.StatusText(s.failWith))
		return
	}
	owner := r.Header.Get("Authorization")
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rest, ok := strings.CutPrefix(r.URL.Path, "/v1/fragments")
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	rest = strings.TrimPrefix(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodGet:
		s.list(w, r, owner)
	case rest == "" && r.Method == http.MethodPost:
		s.create(w, r, owner, body)
	case strings.HasSuffix(rest, "/info") && r.Method == http.MethodGet:
		s.info(w, owner, strings.TrimSuffix(rest, "/info"))
	case r.Method == http.MethodGet:
		s.get(w, owner, rest)
	case r.Method == http.MethodPut:
		s.update(w, r, owner, rest, body)
	case r.Method == http.MethodDelete:
		s.remove(w, owner, rest)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Service) owned(owner, id string) (*storedFragment, bool) {
	f, ok := s.fragments[id]
	if !ok || f.meta.OwnerID != owner {
		return nil, false
	}
	return f, true
}

func (s *Service) list(w http.ResponseWriter, r *http.Request, owner string) {
	expand := r.URL.Query().Get("expand") == "1"
	var metas []fragments.Fragment
	ids := []string{}
	for _, f := range s.fragments {
		if f.meta.OwnerID != owner {
			continue
		}
		metas = append(metas, f.meta)
		ids = append(ids, f.meta.ID)
	}
	if expand {
		if metas == nil {
			metas = []fragments.Fragment{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "fragments": metas})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "fragments": ids})
}

func (s *Service) create(w http.ResponseWriter, r *http.Request, owner string, body []byte) {
	contentType := r.Header.Get("Content-Type")
	if !mediatype.IsSupported(contentType) {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported content type")
		return
	}
	s.nextID++
	now := s.now()
	meta := fragments.Fragment{
		ID:      fmt.Sprintf("frag-%03d", s.nextID),
		OwnerID: owner,
		Type:    contentType,
		Size:    int64(len(body)),
		Created: now,
		Updated: now,
	}
	s.fragments[meta.ID] = &storedFragment{meta: meta, data: body}
	w.Header().Set("Location", s.server.URL+"/v1/fragments/"+meta.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"status": "ok", "fragment": meta})
}

func (s *Service) info(w http.ResponseWriter, owner, id string) {
	f, ok := s.owned(owner, id)
	if !ok {
		writeError(w, http.StatusNotFound, "fragment not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "fragment": f.meta})
}

func (s *Service) get(w http.ResponseWriter, owner, rest string) {
	ext := path.Ext(rest)
	id := strings.TrimSuffix(rest, ext)
	f, ok := s.owned(owner, id)
	if !ok {
		writeError(w, http.StatusNotFound, "fragment not found")
		return
	}
	source := mediatype.Normalize(f.meta.Type)
	if ext == "" {
		writeBody(w, f.meta.Type, f.data)
		return
	}
	target := mediatype.TypeForExtension(ext)
	if target == source {
		writeBody(w, f.meta.Type, f.data)
		return
	}
	if target == "" || !mediatype.CanConvert(source, target) {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported conversion")
		return
	}
	converted, err := convert(source, target, f.data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeBody(w, target, converted)
}

func (s *Service) update(w http.ResponseWriter, r *http.Request, owner, id string, body []byte) {
	f, ok := s.owned(owner, id)
	if !ok {
		writeError(w, http.StatusNotFound, "fragment not found")
		return
	}
	if mediatype.Normalize(r.Header.Get("Content-Type")) != mediatype.Normalize(f.meta.Type) {
		writeError(w, http.StatusBadRequest, "a fragment's type can not be changed after it is created")
		return
	}
	f.data = body
	f.meta.Size = int64(len(body))
	f.meta.Updated = s.now()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "fragment": f.meta})
}

func (s *Service) remove(w http.ResponseWriter, owner, id string) {
	if _, ok := s.owned(owner, id); !ok {
		writeError(w, http.StatusNotFound, "fragment not found")
		return
	}
	delete(s.fragments, id)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// convert implements just enough of the service's conversions for tests.
func convert(source, target string, data []byte) ([]byte, error) {
	switch {
	case target == mediatype.TextPlain:
		return data, nil
	case source == mediatype.TextMarkdown && target == mediatype.TextHTML:
		return []byte("<p>" + strings.TrimSpace(string(data)) + "</p>\n"), nil
	case source == mediatype.TextCSV && target == mediatype.ApplicationJSON:
		records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		if err != nil || len(records) == 0 {
			return nil, fmt.Errorf("parse csv: %v", err)
		}
		rows := make([]map[string]string, 0, len(records)-1)
		for _, record := range records[1:] {
			row := make(map[string]string, len(record))
			for i, value := range record {
				if i < len(records[0]) {
					row[records[0][i]] = value
				}
			}
			rows = append(rows, row)
		}
		return json.Marshal(rows)
	case source == mediatype.ApplicationJSON && target == mediatype.ApplicationYAML:
		var value any
		if err := json.Unmarshal(data, &value); err != nil {
			return nil, err
		}
		return yaml.Marshal(value)
	case strings.HasPrefix(target, "image/"):
		// Relabel only; real transcoding is the service's business.
		return data, nil
	default:
		return nil, fmt.Errorf("no converter for %s -> %s", source, target)
	}
}

func writeBody(w http.ResponseWriter, contentType string, data []byte) {
	if strings.HasPrefix(contentType, "text/") && !strings.Contains(contentType, "charset") {
		contentType += "; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"status": "error",
		"error":  map[string]any{"code": status, "message": message},
	})
}
