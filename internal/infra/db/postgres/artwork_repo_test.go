package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/bryanwahyu/artfeedback/internal/domain/artwork"
)

var (
	createdAt    = time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	artworkCols  = []string{"id", "user_id", "title", "image_url", "category", "detected_style", "created_at"}
	analysisCols = []string{"id", "artwork_id", "user_id", "category", "language", "detected_style", "model", "result_json", "created_at"}
)

func newMockRepo(t *testing.T) (*ArtworkRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return NewArtworkRepository(db), mock
}

func TestSaveArtworkArgs(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO artworks")).
		WithArgs("a1", "u1", "-", nil, "color", "-", createdAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveArtwork(context.Background(), &artwork.Artwork{
		ID: "a1", UserID: "u1", Category: "color", CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("SaveArtwork: %v", err)
	}
}

func TestSaveAnalysisArgs(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO artwork_analyses")).
		WithArgs("an1", "a1", "u1", "style", "en", "anime", nil, "{}", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO artwork_analyses")).
		WillReturnError(errors.New("deadlock"))

	a := &artwork.Analysis{ID: "an1", ArtworkID: "a1", UserID: "u1", Category: "style", Language: "en", DetectedStyle: "anime"}
	if err := repo.SaveAnalysis(context.Background(), a); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}
	if err := repo.SaveAnalysis(context.Background(), a); err == nil || err.Error() != "deadlock" {
		t.Fatalf("SaveAnalysis error: got=%v want=deadlock", err)
	}
}

func TestGetArtwork(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)
	q := regexp.QuoteMeta("FROM artworks WHERE id=$1")

	mock.ExpectQuery(q).WithArgs("missing").WillReturnRows(sqlmock.NewRows(artworkCols))
	mock.ExpectQuery(q).WithArgs("a1").WillReturnRows(
		sqlmock.NewRows(artworkCols).AddRow("a1", "u1", "Harbor", nil, "color", "watercolor", createdAt))

	if _, err := repo.GetArtwork(context.Background(), "missing"); !errors.Is(err, artwork.ErrNotFound) {
		t.Fatalf("missing: got=%v want=%v", err, artwork.ErrNotFound)
	}
	got, err := repo.GetArtwork(context.Background(), "a1")
	if err != nil {
		t.Fatalf("GetArtwork: %v", err)
	}
	if got.Title != "Harbor" || got.ImageURL != "" || !got.CreatedAt.Equal(createdAt) {
		t.Fatalf("artwork: got=%+v", got)
	}
}

func TestListArtworksByUser(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id=$1")).WithArgs("u1", 20).WillReturnRows(
		sqlmock.NewRows(artworkCols).
			AddRow("a2", "u1", "Dusk", "http://minio/artworks/a2.jpg", "general", "oil painting", createdAt).
			AddRow("a1", "u1", "Harbor", nil, "color", "watercolor", createdAt))

	got, err := repo.ListArtworksByUser(context.Background(), "u1", 20)
	if err != nil {
		t.Fatalf("ListArtworksByUser: %v", err)
	}
	if len(got) != 2 || got[0].ImageURL != "http://minio/artworks/a2.jpg" || got[1].ImageURL != "" {
		t.Fatalf("artworks: got=%+v", got)
	}
}

func TestListAnalysesByArtwork(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM artwork_analyses")).WithArgs("a1", 50).WillReturnRows(
		sqlmock.NewRows(analysisCols).
			AddRow("an1", "a1", "u1", "color", "en", "watercolor", nil, `{"detected_style":"watercolor"}`, createdAt))
	mock.ExpectQuery(regexp.QuoteMeta("FROM artwork_analyses")).WithArgs("a2", 50).
		WillReturnError(sql.ErrConnDone)

	got, err := repo.ListAnalysesByArtwork(context.Background(), "a1", 50)
	if err != nil {
		t.Fatalf("ListAnalysesByArtwork: %v", err)
	}
	if len(got) != 1 || got[0].Model != "" || string(got[0].Result) != `{"detected_style":"watercolor"}` {
		t.Fatalf("analyses: got=%+v", got)
	}
	if _, err := repo.ListAnalysesByArtwork(context.Background(), "a2", 50); !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("query error: got=%v", err)
	}
}
