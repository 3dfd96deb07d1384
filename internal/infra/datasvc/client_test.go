package datasvc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bryanwahyu/artfeedback/internal/domain/artwork"
	"github.com/bryanwahyu/artfeedback/internal/domain/critique"
)

func TestSaveAnalysis(t *testing.T) {
	t.Parallel()
	var got artwork.SaveRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/analyses" {
			t.Errorf("route: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "k1" {
			t.Errorf("api key: got=%q", r.Header.Get("X-API-Key"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"artwork_id": "a1", "analysis_id": "n1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "k1", time.Second)
	rec, err := c.SaveAnalysis(context.Background(),
		critique.ArtworkMetadata{UserID: "u1", Title: "Harbor", Category: critique.CategoryColor, Model: "gpt-4o"},
		&critique.StructuredAnalysis{DetectedStyle: "watercolor", Language: "en"},
	)
	if err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}
	if rec.ArtworkID != "a1" || rec.AnalysisID != "n1" {
		t.Fatalf("receipt: got=%+v", rec)
	}
	if got.UserID != "u1" || got.Category != "color" || got.DetectedStyle != "watercolor" || got.Language != "en" {
		t.Fatalf("payload: got=%+v", got)
	}
	var res critique.StructuredAnalysis
	if err := json.Unmarshal(got.Result, &res); err != nil || res.DetectedStyle != "watercolor" {
		t.Fatalf("result payload: %s err=%v", got.Result, err)
	}
}

func TestErrors(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/artworks/missing/analyses":
			http.NotFound(w, r)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"db down","code":"internal"}}`))
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL, "", time.Second)

	if _, err := c.AnalysesForArtwork(context.Background(), "missing"); !errors.Is(err, artwork.ErrNotFound) {
		t.Fatalf("404: got=%v", err)
	}
	_, err := c.ArtworksForUser(context.Background(), "u1")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != 500 || se.Message != "db down" {
		t.Fatalf("500: got=%v", err)
	}
}

func TestListAndCheck(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		case "/v1/users/u%201/artworks", "/v1/users/u 1/artworks":
			_, _ = w.Write([]byte(`{"items":[{"id":"a1","user_id":"u 1","title":"t"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL, "", time.Second)

	if err := c.Check(context.Background()); err != nil {
		t.Fatalf("Check: %v", err)
	}
	items, err := c.ArtworksForUser(context.Background(), "u 1")
	if err != nil || len(items) != 1 || items[0].ID != "a1" {
		t.Fatalf("items: got=%v err=%v", items, err)
	}
}
