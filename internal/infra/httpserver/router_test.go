package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bryanwahyu/artfeedback/internal/application/analysis"
	"github.com/bryanwahyu/artfeedback/internal/domain/artwork"
	"github.com/bryanwahyu/artfeedback/internal/domain/critique"
	"github.com/bryanwahyu/artfeedback/internal/infra/imaging"
	"github.com/bryanwahyu/artfeedback/internal/middleware"
)

const (
	testSecret = "test-secret"
	testIssuer = "artfeedback"
	artID      = "6f1c3a36-9a55-4e8c-9a3d-0d3f7f0e3a11"
)

const critiqueText = `**Technical Assessment**
Clean linework with confident shading.

**Style & Context**
This is a digital painting piece with concept art influences.

**Specific Improvements**
1. Push the shadows. 2. Simplify the background.

I suggest using a warmer palette. Consider studying complementary colors.`

type stubVision struct {
	mu   sync.Mutex
	err  error
	last critique.ImageInput
}

func (s *stubVision) Name() string { return "stub" }

func (s *stubVision) Invoke(_ context.Context, img critique.ImageInput, _, _ string) (critique.RawFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = img
	if s.err != nil {
		return critique.RawFeedback{}, s.err
	}
	return critique.RawFeedback{FullText: critiqueText, Model: "stub-1"}, nil
}

type stubStore struct {
	err error
}

func (s *stubStore) SaveAnalysis(context.Context, critique.ArtworkMetadata, *critique.StructuredAnalysis) (critique.SaveReceipt, error) {
	if s.err != nil {
		return critique.SaveReceipt{}, s.err
	}
	return critique.SaveReceipt{ArtworkID: artID, AnalysisID: "an-1"}, nil
}

func (s *stubStore) AnalysesForArtwork(_ context.Context, id string) ([]*artwork.Analysis, error) {
	if id != artID {
		return nil, artwork.ErrNotFound
	}
	return []*artwork.Analysis{{ID: "an-1", ArtworkID: artID, UserID: "user-1"}}, nil
}

func (s *stubStore) ArtworksForUser(_ context.Context, userID string) ([]*artwork.Artwork, error) {
	return []*artwork.Artwork{{ID: artID, UserID: userID, Title: "Harbor"}}, nil
}

func newTestAPI(t *testing.T, v *stubVision, st critique.Store, maxUpload int64) http.Handler {
	t.Helper()
	svc := &analysis.Service{Vision: v, Analyzer: critique.NewAnalyzer(), Store: st}
	return NewRouter(svc, Options{
		JWTSecret:      testSecret,
		JWTIssuer:      testIssuer,
		MaxUploadBytes: maxUpload,
		Imaging:        imaging.Processor{MaxDimension: 512, Quality: 80},
	})
}

func token(t *testing.T, user string) string {
	t.Helper()
	tok, err := middleware.IssueToken(testSecret, testIssuer, user, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return tok
}

func pngUpload(t *testing.T, fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("field: %v", err)
		}
	}
	if withImage {
		fw, err := mw.CreateFormFile("image", "art.png")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		if err := png.Encode(fw, image.NewRGBA(image.Rect(0, 0, 1024, 256))); err != nil {
			t.Fatalf("png: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return m
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	m := decodeBody(t, rec)
	e, _ := m["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestAnalyzeUploadSaved(t *testing.T) {
	t.Parallel()
	v := &stubVision{}
	h := newTestAPI(t, v, &stubStore{}, 0)

	body, ct := pngUpload(t, map[string]string{"category": "Color", "title": "Harbor", "language": "en"}, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+token(t, "user-1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	m := decodeBody(t, rec)
	a := m["analysis"].(map[string]any)
	if a["detected_style"] != "digital painting" || a["category"] != "color" {
		t.Fatalf("analysis: got=%v", a)
	}
	if got := a["suggestions"].([]any); len(got) != 2 {
		t.Fatalf("suggestions: got=%v", got)
	}
	p := m["persistence"].(map[string]any)
	if p["saved"] != true || p["artwork_id"] != artID {
		t.Fatalf("persistence: got=%v", p)
	}
	if _, ok := m["warning"]; ok {
		t.Fatalf("no warning expected when saved")
	}
	// 1024x256 PNG is downscaled to 512 wide and re-encoded
	if v.last.MIMEType != "image/jpeg" || len(v.last.Data) == 0 {
		t.Fatalf("vision got mime=%q bytes=%d", v.last.MIMEType, len(v.last.Data))
	}
}

func TestAnalyzeJSONPromptAnonymous(t *testing.T) {
	t.Parallel()
	h := newTestAPI(t, &stubVision{}, &stubStore{}, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"prompt":"a watercolor harbor at dusk","category":"style"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	p := decodeBody(t, rec)["persistence"].(map[string]any)
	if p["saved"] != false || p["temporary"] != false {
		t.Fatalf("anonymous persistence: got=%v", p)
	}
}

func TestAnalyzeStoreFailureIsTemporary(t *testing.T) {
	t.Parallel()
	h := newTestAPI(t, &stubVision{}, &stubStore{err: errors.New("down")}, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"image_url":"https://cdn.example.com/a.png"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token(t, "user-1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	m := decodeBody(t, rec)
	p := m["persistence"].(map[string]any)
	if p["saved"] != false || p["temporary"] != true || m["warning"] == nil {
		t.Fatalf("got=%v", m)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		visErr   error
		body     string
		ct       string
		wantCode int
		wantErr  string
	}{
		{"nothing to analyze", nil, `{}`, "application/json", http.StatusBadRequest, "invalid_request"},
		{"bad category", nil, `{"prompt":"x","category":"sculpture"}`, "application/json", http.StatusBadRequest, "invalid_request"},
		{"bad language", nil, `{"prompt":"x","language":"english"}`, "application/json", http.StatusBadRequest, "invalid_request"},
		{"ssrf url", nil, `{"image_url":"http://169.254.169.254/latest"}`, "application/json", http.StatusBadRequest, "invalid_request"},
		{"not an image", nil, `{"image_base64":"aGVsbG8gd29ybGQ="}`, "application/json", http.StatusBadRequest, "invalid_request"},
		{"broken json", nil, `{"prompt":`, "application/json", http.StatusBadRequest, "invalid_request"},
		{"wrong content type", nil, `prompt=x`, "text/plain", http.StatusBadRequest, "invalid_request"},
		{"quota", &critique.ProviderError{Provider: "stub", Err: critique.ErrQuotaExceeded}, `{"prompt":"x"}`, "application/json", http.StatusTooManyRequests, "quota_exceeded"},
		{"provider down", errors.New("boom"), `{"prompt":"x"}`, "application/json", http.StatusBadGateway, "provider_error"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newTestAPI(t, &stubVision{err: tt.visErr}, nil, 0)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.ct)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("status: got=%d want=%d body=%s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if got := errorCode(t, rec); got != tt.wantErr {
				t.Fatalf("code: got=%q want=%q", got, tt.wantErr)
			}
		})
	}
}

func TestAnalyzeUploadTooLarge(t *testing.T) {
	t.Parallel()
	h := newTestAPI(t, &stubVision{}, nil, 1024)
	body, ct := pngUpload(t, map[string]string{"category": "general"}, true)
	body.Write(bytes.Repeat([]byte{0}, 4096))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge && rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestHistoryEndpoints(t *testing.T) {
	t.Parallel()
	h := newTestAPI(t, &stubVision{}, &stubStore{}, 0)
	auth := "Bearer " + token(t, "user-1")

	tests := []struct {
		name string
		path string
		auth string
		want int
	}{
		{"artworks anonymous", "/api/v1/artworks", "", http.StatusUnauthorized},
		{"artworks", "/api/v1/artworks", auth, http.StatusOK},
		{"analyses", "/api/v1/artworks/" + artID + "/analyses", auth, http.StatusOK},
		{"analyses bad id", "/api/v1/artworks/nope/analyses", auth, http.StatusBadRequest},
		{"analyses other user", "/api/v1/artworks/" + artID + "/analyses", "Bearer " + token(t, "user-2"), http.StatusNotFound},
		{"analyses unknown", "/api/v1/artworks/0b9f0b55-3a2f-4a5e-8f1e-6f2f0c1d2e3f/analyses", auth, http.StatusNotFound},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status: got=%d want=%d body=%s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestHistoryWithoutStore(t *testing.T) {
	t.Parallel()
	h := newTestAPI(t, &stubVision{}, nil, 0)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/artworks", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "user-1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got=%d want=%d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	t.Parallel()
	h := newTestAPI(t, &stubVision{}, nil, 0)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/styles", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("styles: got=%d", rec.Code)
	}
	m := decodeBody(t, rec)
	if fams := m["families"].([]any); len(fams) != 5 || m["fallback"] != "mixed media" {
		t.Fatalf("styles: got=%v", m)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/resources?category=color", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("resources: got=%d", rec.Code)
	}
	res := decodeBody(t, rec)["resources"].([]any)
	if len(res) != 3 {
		t.Fatalf("color resources: got=%d want=3", len(res))
	}
	first := res[0].(map[string]any)
	if !strings.Contains(first["title"].(string), "Color and Light") {
		t.Fatalf("first color resource: got=%v", first["title"])
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/resources?category=sculpture", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad category: got=%d", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	h := newTestAPI(t, &stubVision{}, nil, 0)
	for path, want := range map[string]int{"/live": 200, "/ready": 200, "/health": 200, "/metrics": 200} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Fatalf("%s: got=%d want=%d", path, rec.Code, want)
		}
	}
}
