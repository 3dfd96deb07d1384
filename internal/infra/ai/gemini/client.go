package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/bryanwahyu/artfeedback/internal/domain/critique"
	"github.com/bryanwahyu/artfeedback/internal/middleware"
)

const (
	maxFetchBytes = 20 << 20
	maxRedirects  = 5
)

type Client struct {
	APIKey      string
	Model       string
	Temperature float32
	// HTTP fetches remote images; Gemini only accepts inline bytes here.
	HTTP *http.Client
}

func NewClient(apiKey, model string, temperature float32) *Client {
	return &Client{
		APIKey:      strings.TrimSpace(apiKey),
		Model:       strings.TrimSpace(model),
		Temperature: temperature,
		HTTP:        newFetchClient(),
	}
}

// newFetchClient only connects to public addresses. The check runs on the
// resolved IP at dial time, so DNS names and redirects cannot reach
// loopback, private or metadata endpoints.
func newFetchClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   dialControl,
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.Proxy = nil // a proxy would dial on our behalf
	tr.DialContext = dialer.DialContext
	return &http.Client{
		Timeout:       30 * time.Second,
		Transport:     tr,
		CheckRedirect: checkRedirect,
	}
}

func dialControl(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || middleware.BlockedIP(ip) {
		return fmt.Errorf("refusing to connect to %s", address)
	}
	return nil
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if err := middleware.ValidateURL(req.URL.String()); err != nil {
		return fmt.Errorf("redirect to %s: %w", req.URL.Redacted(), err)
	}
	return nil
}

func (c *Client) Name() string { return "gemini" }

func (c *Client) Invoke(ctx context.Context, image critique.ImageInput, system, user string) (critique.RawFeedback, error) {
	fail := func(err error) (critique.RawFeedback, error) {
		return critique.RawFeedback{}, &critique.ProviderError{Provider: c.Name(), Err: err}
	}
	if c.APIKey == "" {
		return fail(errors.New("GEMINI_API_KEY is empty"))
	}

	parts := []genai.Part{genai.Text(user)}
	data, mime := image.Data, image.MIMEType
	if len(data) == 0 && image.URL != "" {
		var err error
		data, mime, err = c.fetch(ctx, image.URL)
		if err != nil {
			return fail(err)
		}
	}
	if len(data) > 0 {
		if mime == "" {
			mime = http.DetectContentType(data)
		}
		parts = append(parts, &genai.Blob{MIMEType: mime, Data: data})
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.APIKey))
	if err != nil {
		return fail(err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(c.Model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(c.Temperature),
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		if isQuota(err) {
			return fail(fmt.Errorf("%w: %v", critique.ErrQuotaExceeded, err))
		}
		return fail(fmt.Errorf("generate content: %w", err))
	}
	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		return fail(errors.New("empty response"))
	}

	out := critique.RawFeedback{FullText: txt, Model: c.Model}
	if resp.UsageMetadata != nil && resp.UsageMetadata.TotalTokenCount > 0 {
		n := int(resp.UsageMetadata.TotalTokenCount)
		out.TokenUsage = &n
	}
	return out, nil
}

// fetch downloads a remote image through the guarded client.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}
	if len(data) > maxFetchBytes {
		return nil, "", fmt.Errorf("fetch image: larger than %d bytes", maxFetchBytes)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, "", fmt.Errorf("fetch image: unexpected content type %q", mime)
	}
	return data, mime, nil
}

func isQuota(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "resourceexhausted") || strings.Contains(s, "resource_exhausted") ||
		strings.Contains(s, "resource has been exhausted") || strings.Contains(s, "quota")
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
