package artworks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bryanwahyu/artfeedback/internal/application"
	"github.com/bryanwahyu/artfeedback/internal/domain/artwork"
	"github.com/bryanwahyu/artfeedback/internal/domain/critique"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Service implements the data-service use cases.
type Service struct {
	Repo  artwork.Repository
	Clock application.Clock
}

// Save stores an analysis, creating its artwork unless ArtworkID points to
// one the same user already owns.
func (s *Service) Save(ctx context.Context, req artwork.SaveRequest) (critique.SaveReceipt, error) {
	if err := validateSave(req); err != nil {
		return critique.SaveReceipt{}, err
	}
	now := s.Clock.Now()

	artworkID := req.ArtworkID
	if artworkID != "" {
		existing, err := s.Repo.GetArtwork(ctx, artworkID)
		if err != nil {
			return critique.SaveReceipt{}, err
		}
		if existing.UserID != req.UserID {
			return critique.SaveReceipt{}, artwork.ErrNotFound
		}
	} else {
		artworkID = uuid.New().String()
		a := &artwork.Artwork{
			ID:            artworkID,
			UserID:        req.UserID,
			Title:         strings.TrimSpace(req.Title),
			ImageURL:      req.ImageURL,
			Category:      req.Category,
			DetectedStyle: req.DetectedStyle,
			CreatedAt:     now,
		}
		if a.Title == "" {
			a.Title = "Untitled"
		}
		if err := s.Repo.SaveArtwork(ctx, a); err != nil {
			return critique.SaveReceipt{}, fmt.Errorf("save artwork: %w", err)
		}
	}

	an := &artwork.Analysis{
		ID:            uuid.New().String(),
		ArtworkID:     artworkID,
		UserID:        req.UserID,
		Category:      req.Category,
		Language:      req.Language,
		DetectedStyle: req.DetectedStyle,
		Model:         req.Model,
		Result:        req.Result,
		CreatedAt:     now,
	}
	if err := s.Repo.SaveAnalysis(ctx, an); err != nil {
		return critique.SaveReceipt{}, fmt.Errorf("save analysis: %w", err)
	}
	return critique.SaveReceipt{ArtworkID: artworkID, AnalysisID: an.ID}, nil
}

// ArtworksForUser lists a user's artworks, newest first.
func (s *Service) ArtworksForUser(ctx context.Context, userID string, limit int) ([]*artwork.Artwork, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, critique.Invalid("user_id", "required")
	}
	return s.Repo.ListArtworksByUser(ctx, userID, clampLimit(limit))
}

// AnalysesForArtwork lists analyses of one artwork, newest first. Unknown
// artworks yield artwork.ErrNotFound.
func (s *Service) AnalysesForArtwork(ctx context.Context, artworkID string, limit int) ([]*artwork.Analysis, error) {
	if _, err := uuid.Parse(artworkID); err != nil {
		return nil, critique.Invalid("artwork_id", "must be a UUID")
	}
	if _, err := s.Repo.GetArtwork(ctx, artworkID); err != nil {
		return nil, err
	}
	return s.Repo.ListAnalysesByArtwork(ctx, artworkID, clampLimit(limit))
}

func validateSave(req artwork.SaveRequest) error {
	if strings.TrimSpace(req.UserID) == "" {
		return critique.Invalid("user_id", "required")
	}
	if !critique.Category(req.Category).Valid() {
		return critique.Invalid("category", "%q is not a known category", req.Category)
	}
	if req.ArtworkID != "" {
		if _, err := uuid.Parse(req.ArtworkID); err != nil {
			return critique.Invalid("artwork_id", "must be a UUID")
		}
	}
	if len(req.Result) == 0 || !json.Valid(req.Result) {
		return critique.Invalid("result", "must be a JSON document")
	}
	return nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}
