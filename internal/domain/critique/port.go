package critique

import (
	"context"
	"time"

	"github.com/bryanwahyu/artfeedback/internal/domain/artwork"
)

// VisionClient port (interface untuk AI provider)
type VisionClient interface {
	Name() string
	Invoke(ctx context.Context, image ImageInput, systemInstruction, userInstruction string) (RawFeedback, error)
}

// Store port for the remote persistence collaborator.
type Store interface {
	SaveAnalysis(ctx context.Context, meta ArtworkMetadata, result *StructuredAnalysis) (SaveReceipt, error)
	AnalysesForArtwork(ctx context.Context, artworkID string) ([]*artwork.Analysis, error)
	ArtworksForUser(ctx context.Context, userID string) ([]*artwork.Artwork, error)
}

// ImageStore port for keeping uploaded originals.
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Cache port for previously computed analyses.
type Cache interface {
	Get(ctx context.Context, key string) (*StructuredAnalysis, bool, error)
	Set(ctx context.Context, key string, a *StructuredAnalysis, ttl time.Duration) error
}
