package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS artworks (
  id             CHAR(36)     NOT NULL PRIMARY KEY,
  user_id        VARCHAR(128) NOT NULL,
  title          VARCHAR(255) NOT NULL,
  image_url      TEXT         NULL,
  category       VARCHAR(32)  NOT NULL,
  detected_style VARCHAR(64)  NOT NULL,
  created_at     DATETIME(3)  NOT NULL,
  KEY idx_artworks_user_created (user_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS artwork_analyses (
  id             CHAR(36)     NOT NULL PRIMARY KEY,
  artwork_id     CHAR(36)     NOT NULL,
  user_id        VARCHAR(128) NOT NULL,
  category       VARCHAR(32)  NOT NULL,
  language       VARCHAR(8)   NOT NULL,
  detected_style VARCHAR(64)  NOT NULL,
  model          VARCHAR(128) NULL,
  result_json    JSON         NOT NULL,
  created_at     DATETIME(3)  NOT NULL,
  KEY idx_analyses_artwork_created (artwork_id, created_at),
  CONSTRAINT fk_analyses_artwork FOREIGN KEY (artwork_id) REFERENCES artworks(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("mysql schema: %w", err)
		}
	}
	return nil
}
