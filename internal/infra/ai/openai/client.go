package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/artfeedback/internal/domain/critique"
)

const defaultMaxTokens = 2048

type Client struct {
	*openai.Client
	Model     string
	MaxTokens int
}

// NewClient builds a vision client. baseURL is optional (proxies, tests).
func NewClient(apiKey, model, baseURL string, maxTokens int) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model, MaxTokens: maxTokens}
}

func (c *Client) Name() string { return "openai" }

// Invoke sends one chat completion with the image attached as an image_url
// part. Inline bytes travel as a data URL.
func (c *Client) Invoke(ctx context.Context, image critique.ImageInput, system, user string) (critique.RawFeedback, error) {
	model := c.Model
	if model == "" {
		model = openai.GPT4o
	}

	parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: user}}
	if ref := imageRef(image); ref != "" {
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: ref, Detail: openai.ImageURLDetailAuto},
		})
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(model) {
		req.MaxCompletionTokens = c.MaxTokens
	} else {
		req.MaxTokens = c.MaxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		if isQuota(err) {
			return critique.RawFeedback{}, &critique.ProviderError{Provider: c.Name(), Err: fmt.Errorf("%w: %v", critique.ErrQuotaExceeded, err)}
		}
		return critique.RawFeedback{}, &critique.ProviderError{Provider: c.Name(), Err: fmt.Errorf("failed to create chat completion: %w", err)}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return critique.RawFeedback{}, &critique.ProviderError{Provider: c.Name(), Err: errors.New("empty completion")}
	}

	out := critique.RawFeedback{FullText: resp.Choices[0].Message.Content, Model: resp.Model}
	if out.Model == "" {
		out.Model = model
	}
	if resp.Usage.TotalTokens > 0 {
		n := resp.Usage.TotalTokens
		out.TokenUsage = &n
	}
	return out, nil
}

func imageRef(image critique.ImageInput) string {
	if len(image.Data) > 0 {
		mime := image.MIMEType
		if mime == "" {
			mime = http.DetectContentType(image.Data)
		}
		return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image.Data)
	}
	return strings.TrimSpace(image.URL)
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

func isQuota(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	return false
}
