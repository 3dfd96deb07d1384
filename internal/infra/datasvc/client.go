package datasvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bryanwahyu/artfeedback/internal/domain/artwork"
	"github.com/bryanwahyu/artfeedback/internal/domain/critique"
)

// Client talks to the data service over HTTP/JSON. It implements
// critique.Store.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// StatusError is a non-2xx answer from the data service.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("data service: status %d: %s", e.Code, e.Message)
}

func (c *Client) SaveAnalysis(ctx context.Context, meta critique.ArtworkMetadata, result *critique.StructuredAnalysis) (critique.SaveReceipt, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return critique.SaveReceipt{}, fmt.Errorf("encode result: %w", err)
	}
	body := artwork.SaveRequest{
		UserID:        meta.UserID,
		Title:         meta.Title,
		ImageURL:      meta.ImageURL,
		Category:      string(meta.Category),
		Language:      result.Language,
		DetectedStyle: result.DetectedStyle,
		Model:         meta.Model,
		Result:        raw,
	}
	var rec critique.SaveReceipt
	if err := c.do(ctx, http.MethodPost, "/v1/analyses", body, &rec); err != nil {
		return critique.SaveReceipt{}, err
	}
	return rec, nil
}

func (c *Client) ArtworksForUser(ctx context.Context, userID string) ([]*artwork.Artwork, error) {
	var out struct {
		Items []*artwork.Artwork `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(userID)+"/artworks", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) AnalysesForArtwork(ctx context.Context, artworkID string) ([]*artwork.Analysis, error) {
	var out struct {
		Items []*artwork.Analysis `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/artworks/"+url.PathEscape(artworkID)+"/analyses", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Check pings /health for the readiness check.
func (c *Client) Check(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("data service %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return artwork.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func errorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4<<10))
	var env struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &env) == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
