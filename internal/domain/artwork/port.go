package artwork

import "context"

// Repository port for persisting and querying artworks and their analyses
type Repository interface {
	SaveArtwork(ctx context.Context, a *Artwork) error
	SaveAnalysis(ctx context.Context, a *Analysis) error
	GetArtwork(ctx context.Context, id string) (*Artwork, error)
	ListArtworksByUser(ctx context.Context, userID string, limit int) ([]*Artwork, error)
	ListAnalysesByArtwork(ctx context.Context, artworkID string, limit int) ([]*Analysis, error)
}
