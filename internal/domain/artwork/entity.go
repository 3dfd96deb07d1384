package artwork

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// Artwork is an uploaded piece owned by a user.
type Artwork struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	ImageURL      string    `json:"image_url,omitempty"`
	Category      string    `json:"category"`
	DetectedStyle string    `json:"detected_style"`
	CreatedAt     time.Time `json:"created_at"`
}

// Analysis represents an AI analysis result stored for auditing and retrieval
type Analysis struct {
	ID            string          `json:"id"`
	ArtworkID     string          `json:"artwork_id"`
	UserID        string          `json:"user_id"`
	Category      string          `json:"category"`
	Language      string          `json:"language"`
	DetectedStyle string          `json:"detected_style"`
	Model         string          `json:"model,omitempty"`
	Result        json.RawMessage `json:"result"` // structured analysis as JSON
	CreatedAt     time.Time       `json:"created_at"`
}

// SaveRequest is the payload accepted by the data service when an analysis
// is stored. ArtworkID attaches the analysis to an existing artwork.
type SaveRequest struct {
	ArtworkID     string          `json:"artwork_id,omitempty"`
	UserID        string          `json:"user_id"`
	Title         string          `json:"title"`
	ImageURL      string          `json:"image_url,omitempty"`
	Category      string          `json:"category"`
	Language      string          `json:"language"`
	DetectedStyle string          `json:"detected_style"`
	Model         string          `json:"model,omitempty"`
	Result        json.RawMessage `json:"result"`
}
