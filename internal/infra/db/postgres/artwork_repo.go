package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bryanwahyu/artfeedback/internal/domain/artwork"
)

type ArtworkRepository struct {
	db *sql.DB
}

func NewArtworkRepository(db *sql.DB) *ArtworkRepository {
	return &ArtworkRepository{db: db}
}

// SaveArtwork inserts or updates an artwork row
func (r *ArtworkRepository) SaveArtwork(ctx context.Context, a *artwork.Artwork) error {
	const q = `
INSERT INTO artworks
  (id, user_id, title, image_url, category, detected_style, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  title=EXCLUDED.title,
  image_url=EXCLUDED.image_url,
  category=EXCLUDED.category,
  detected_style=EXCLUDED.detected_style;
`
	_, err := r.db.ExecContext(ctx, q,
		a.ID,
		a.UserID,
		stringOrDash(a.Title),
		nullString(a.ImageURL),
		a.Category,
		stringOrDash(a.DetectedStyle),
		createdOrNow(a.CreatedAt),
	)
	return err
}

// SaveAnalysis inserts or updates an analysis record
func (r *ArtworkRepository) SaveAnalysis(ctx context.Context, a *artwork.Analysis) error {
	const q = `
INSERT INTO artwork_analyses
  (id, artwork_id, user_id, category, language, detected_style, model, result_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8::jsonb,$9)
ON CONFLICT (id) DO UPDATE SET
  detected_style=EXCLUDED.detected_style,
  model=EXCLUDED.model,
  result_json=EXCLUDED.result_json;
`
	_, err := r.db.ExecContext(ctx, q,
		a.ID,
		a.ArtworkID,
		a.UserID,
		a.Category,
		a.Language,
		stringOrDash(a.DetectedStyle),
		nullString(a.Model),
		jsonText(a.Result),
		createdOrNow(a.CreatedAt),
	)
	return err
}

func (r *ArtworkRepository) GetArtwork(ctx context.Context, id string) (*artwork.Artwork, error) {
	const q = `
SELECT id, user_id, title, image_url, category, detected_style, created_at
FROM artworks WHERE id=$1;
`
	a, err := scanArtwork(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, artwork.ErrNotFound
	}
	return a, err
}

// ListArtworksByUser returns newest first
func (r *ArtworkRepository) ListArtworksByUser(ctx context.Context, userID string, limit int) ([]*artwork.Artwork, error) {
	const q = `
SELECT id, user_id, title, image_url, category, detected_style, created_at
FROM artworks
WHERE user_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2;
`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*artwork.Artwork{}
	for rows.Next() {
		a, err := scanArtwork(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListAnalysesByArtwork returns newest first
func (r *ArtworkRepository) ListAnalysesByArtwork(ctx context.Context, artworkID string, limit int) ([]*artwork.Analysis, error) {
	const q = `
SELECT id, artwork_id, user_id, category, language, detected_style, model, result_json::text, created_at
FROM artwork_analyses
WHERE artwork_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2;
`
	rows, err := r.db.QueryContext(ctx, q, artworkID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*artwork.Analysis{}
	for rows.Next() {
		var a artwork.Analysis
		var model sql.NullString
		var result string
		var created time.Time
		if err := rows.Scan(&a.ID, &a.ArtworkID, &a.UserID, &a.Category, &a.Language, &a.DetectedStyle, &model, &result, &created); err != nil {
			return nil, err
		}
		a.Model = model.String
		a.Result = []byte(result)
		a.CreatedAt = created
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Ping for health checks
func (r *ArtworkRepository) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtwork(s rowScanner) (*artwork.Artwork, error) {
	var a artwork.Artwork
	var imageURL sql.NullString
	var created time.Time
	if err := s.Scan(&a.ID, &a.UserID, &a.Title, &imageURL, &a.Category, &a.DetectedStyle, &created); err != nil {
		return nil, err
	}
	a.ImageURL = imageURL.String
	a.CreatedAt = created
	return &a, nil
}
