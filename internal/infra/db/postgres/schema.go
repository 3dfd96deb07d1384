package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS artworks (
  id             UUID         PRIMARY KEY,
  user_id        VARCHAR(128) NOT NULL,
  title          VARCHAR(255) NOT NULL,
  image_url      TEXT,
  category       VARCHAR(32)  NOT NULL,
  detected_style VARCHAR(64)  NOT NULL,
  created_at     TIMESTAMPTZ  NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_artworks_user_created ON artworks (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS artwork_analyses (
  id             UUID         PRIMARY KEY,
  artwork_id     UUID         NOT NULL REFERENCES artworks(id) ON DELETE CASCADE,
  user_id        VARCHAR(128) NOT NULL,
  category       VARCHAR(32)  NOT NULL,
  language       VARCHAR(8)   NOT NULL,
  detected_style VARCHAR(64)  NOT NULL,
  model          VARCHAR(128),
  result_json    JSONB        NOT NULL,
  created_at     TIMESTAMPTZ  NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_analyses_artwork_created ON artwork_analyses (artwork_id, created_at DESC)`,
}

// EnsureSchema creates the tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}
	}
	return nil
}
