package ai

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/artfeedback/internal/config"
	"github.com/bryanwahyu/artfeedback/internal/domain/critique"
	"github.com/bryanwahyu/artfeedback/internal/infra/ai/gemini"
	"github.com/bryanwahyu/artfeedback/internal/infra/ai/openai"
)

// NewVisionClient picks the provider named in cfg.AI.Provider.
func NewVisionClient(cfg *config.Config) (critique.VisionClient, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.AI.Provider)) {
	case "openai", "":
		if cfg.AI.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("openai: OPENAI_API_KEY is empty")
		}
		o := cfg.AI.OpenAI
		return openai.NewClient(o.APIKey, o.Model, o.BaseURL, o.MaxTokens), nil
	case "gemini":
		if cfg.AI.Gemini.APIKey == "" {
			return nil, fmt.Errorf("gemini: GEMINI_API_KEY is empty")
		}
		g := cfg.AI.Gemini
		return gemini.NewClient(g.APIKey, g.Model, g.Temperature), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}
