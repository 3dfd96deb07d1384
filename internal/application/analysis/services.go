package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/artfeedback/internal/application"
	"github.com/bryanwahyu/artfeedback/internal/domain/artwork"
	"github.com/bryanwahyu/artfeedback/internal/domain/critique"
	"github.com/bryanwahyu/artfeedback/internal/infra/ai/prompt"
	"github.com/bryanwahyu/artfeedback/internal/platform/logger"
)

// ErrPersistenceDisabled is returned by the history use cases when no data
// service is configured.
var ErrPersistenceDisabled = errors.New("persistence is not configured")

// Metrics receives orchestrator events. Optional.
type Metrics interface {
	AnalysisCompleted(category string)
	ProviderFailed(provider string)
	ResultUnsaved()
	CacheHit()
}

// Service is the feedback orchestrator. Safe for concurrent use; the
// analyzer and its taxonomy/catalog are read-only.
type Service struct {
	Vision   critique.VisionClient
	Analyzer *critique.Analyzer
	Store    critique.Store      // nil: results are never persisted
	Images   critique.ImageStore // nil: originals are not uploaded
	Cache    critique.Cache      // nil: no caching
	CacheTTL time.Duration
	Metrics  Metrics
	Clock    application.Clock
	Log      *logger.Logger
}

// Persistence describes what happened to the result after the AI call.
// Temporary means the caller was identified but nothing was stored.
type Persistence struct {
	Saved      bool   `json:"saved"`
	Temporary  bool   `json:"temporary"`
	ArtworkID  string `json:"artwork_id,omitempty"`
	AnalysisID string `json:"analysis_id,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	Err        error  `json:"-"`
}

// Outcome is the full answer for one request.
type Outcome struct {
	Analysis    *critique.StructuredAnalysis `json:"analysis"`
	Persistence Persistence                  `json:"persistence"`
	Model       string                       `json:"model"`
	TokenUsage  *int                         `json:"token_usage,omitempty"`
	Cached      bool                         `json:"cached"`
	DurationMS  int64                        `json:"duration_ms"`
}

// Analyze runs validate → prompt → vision → parse → persist. The AI call and
// the save are detached from caller cancellation.
func (s *Service) Analyze(ctx context.Context, req critique.AnalysisRequest) (*Outcome, error) {
	if req.Category == "" {
		req.Category = critique.CategoryGeneral
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Language == "" {
		req.Language = critique.DefaultLanguage
	}
	start := s.now()
	log := s.log().With("category", req.Category, "language", req.Language, "provider", s.Vision.Name())

	key := s.cacheKey(req)
	if cached := s.lookup(ctx, key); cached != nil {
		if s.Metrics != nil {
			s.Metrics.CacheHit()
		}
		out := &Outcome{Analysis: cached, Model: cached.Model, Cached: true}
		out.Persistence = s.persist(ctx, req, cached)
		out.DurationMS = s.now().Sub(start).Milliseconds()
		return out, nil
	}

	detached := context.WithoutCancel(ctx)
	user := prompt.GetUserPrompt(req.Category, req.Prompt, req.Language)

	// satu kali panggil, tanpa retry
	raw, err := s.Vision.Invoke(detached, req.Image, prompt.GetSystemPrompt(), user)
	if err != nil {
		if s.Metrics != nil {
			s.Metrics.ProviderFailed(s.Vision.Name())
		}
		log.Error("vision call failed", "err", err)
		var pe *critique.ProviderError
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, &critique.ProviderError{Provider: s.Vision.Name(), Err: err}
	}

	result := s.Analyzer.Build(raw, req.Category, req.Language)
	if s.Metrics != nil {
		s.Metrics.AnalysisCompleted(string(req.Category))
	}
	s.store(ctx, key, result)

	out := &Outcome{
		Analysis:   result,
		Model:      raw.Model,
		TokenUsage: raw.TokenUsage,
	}
	out.Persistence = s.persist(ctx, req, result)
	out.DurationMS = s.now().Sub(start).Milliseconds()

	log.Info("analysis done",
		"style", result.DetectedStyle,
		"suggestions", len(result.Suggestions),
		"saved", out.Persistence.Saved,
		"duration_ms", out.DurationMS,
	)
	return out, nil
}

// persist uploads the original and saves the result. It never returns an
// error: failures are logged and reported through Persistence.
func (s *Service) persist(ctx context.Context, req critique.AnalysisRequest, result *critique.StructuredAnalysis) Persistence {
	if req.Anonymous() {
		return Persistence{}
	}
	p := Persistence{Temporary: true, ImageURL: req.Image.URL}
	if s.Store == nil {
		s.unsaved()
		return p
	}
	detached := context.WithoutCancel(ctx)
	log := s.log().With("user_id", req.UserID)

	if s.Images != nil && len(req.Image.Data) > 0 {
		key := objectKey(req.UserID, req.Image.MIMEType)
		url, err := s.Images.Put(detached, key, req.Image.Data, req.Image.MIMEType)
		if err != nil {
			// lanjut simpan analisis walaupun upload gagal
			log.Warn("image upload failed", "key", key, "err", err)
		} else {
			p.ImageURL = url
		}
	}

	receipt, err := s.Store.SaveAnalysis(detached, critique.ArtworkMetadata{
		UserID:   req.UserID,
		Title:    titleOrDefault(req.Title),
		ImageURL: p.ImageURL,
		Category: req.Category,
		Model:    result.Model,
	}, result)
	if err != nil {
		p.Err = &critique.PersistenceError{Op: "save analysis", Err: err}
		log.Error("saving analysis failed, result is temporary", "err", err)
		s.unsaved()
		return p
	}

	p.Saved = true
	p.Temporary = false
	p.ArtworkID = receipt.ArtworkID
	p.AnalysisID = receipt.AnalysisID
	return p
}

// ListArtworks returns the caller's artworks, newest first.
func (s *Service) ListArtworks(ctx context.Context, userID string) ([]*artwork.Artwork, error) {
	if s.Store == nil {
		return nil, ErrPersistenceDisabled
	}
	if strings.TrimSpace(userID) == "" {
		return nil, critique.Invalid("user", "authentication required")
	}
	return s.Store.ArtworksForUser(ctx, userID)
}

// ListAnalyses returns the analyses of one artwork owned by userID.
func (s *Service) ListAnalyses(ctx context.Context, userID, artworkID string) ([]*artwork.Analysis, error) {
	if s.Store == nil {
		return nil, ErrPersistenceDisabled
	}
	if strings.TrimSpace(userID) == "" {
		return nil, critique.Invalid("user", "authentication required")
	}
	all, err := s.Store.AnalysesForArtwork(ctx, artworkID)
	if err != nil {
		return nil, err
	}
	own := make([]*artwork.Analysis, 0, len(all))
	for _, a := range all {
		if a.UserID == userID {
			own = append(own, a)
		}
	}
	if len(all) > 0 && len(own) == 0 {
		// jangan bocorkan keberadaan artwork milik user lain
		return nil, artwork.ErrNotFound
	}
	return own, nil
}

func (s *Service) cacheKey(req critique.AnalysisRequest) string {
	if s.Cache == nil || req.ImageHash == "" {
		return ""
	}
	h := sha256.New()
	for _, part := range []string{req.ImageHash, string(req.Category), req.Language, strings.TrimSpace(req.Prompt), s.Vision.Name()} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "analysis:" + hex.EncodeToString(h.Sum(nil))
}

func (s *Service) lookup(ctx context.Context, key string) *critique.StructuredAnalysis {
	if key == "" {
		return nil
	}
	a, ok, err := s.Cache.Get(ctx, key)
	if err != nil {
		s.log().Warn("cache get failed", "err", err)
		return nil
	}
	if !ok {
		return nil
	}
	return a
}

func (s *Service) store(ctx context.Context, key string, a *critique.StructuredAnalysis) {
	if key == "" {
		return
	}
	if err := s.Cache.Set(context.WithoutCancel(ctx), key, a, s.CacheTTL); err != nil {
		s.log().Warn("cache set failed", "err", err)
	}
}

func (s *Service) unsaved() {
	if s.Metrics != nil {
		s.Metrics.ResultUnsaved()
	}
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *Service) log() *logger.Logger {
	if s.Log == nil {
		return logger.Nop()
	}
	return s.Log
}

func objectKey(userID, mime string) string {
	ext := ".bin"
	switch mime {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	case "image/gif":
		ext = ".gif"
	case "image/webp":
		ext = ".webp"
	}
	return fmt.Sprintf("artworks/%s/%s%s", userID, uuid.New().String(), ext)
}

func titleOrDefault(t string) string {
	if t = strings.TrimSpace(t); t != "" {
		return t
	}
	return "Untitled"
}
