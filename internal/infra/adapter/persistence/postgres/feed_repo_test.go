package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"newsatlas/internal/domain/entity"
	"newsatlas/internal/infra/adapter/persistence/postgres"
)

func feedColumns() []string {
	return []string{"id", "url", "name", "language", "status", "last_fetched_at", "created_at", "updated_at"}
}

func feedRow(f *entity.Feed) *sqlmock.Rows {
	return sqlmock.NewRows(feedColumns()).AddRow(
		f.ID, f.URL, f.Name, f.Language, f.Status,
		f.LastFetchedAt, f.CreatedAt, f.UpdatedAt,
	)
}

func TestFeedRepo_ListActive(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	want := []*entity.Feed{
		{ID: 1, URL: "https://www.tagesschau.de/index~rss2.xml", Name: "tagesschau", Language: "de",
			Status: entity.FeedStatusActive, CreatedAt: now, UpdatedAt: now},
		{ID: 2, URL: "https://example.com/feed", Name: "example", Language: "en",
			Status: entity.FeedStatusActive, LastFetchedAt: &now, CreatedAt: now, UpdatedAt: now},
	}

	rows := sqlmock.NewRows(feedColumns())
	for _, f := range want {
		rows.AddRow(f.ID, f.URL, f.Name, f.Language, f.Status, f.LastFetchedAt, f.CreatedAt, f.UpdatedAt)
	}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, url, name, language, status`)).
		WillReturnRows(rows)

	repo := postgres.NewFeedRepo(db)
	got, err := repo.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFeedRepo_GetByURL(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	want := &entity.Feed{
		ID: 3, URL: "https://example.com/feed", Name: "example",
		Status: entity.FeedStatusActive, CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, url, name, language, status`)).
		WithArgs("https://example.com/feed").
		WillReturnRows(feedRow(want))

	repo := postgres.NewFeedRepo(db)
	got, err := repo.GetByURL(context.Background(), "https://example.com/feed")
	if err != nil {
		t.Fatalf("GetByURL err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFeedRepo_GetByURL_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, url, name, language, status`)).
		WithArgs("https://missing.example.com/feed").
		WillReturnRows(sqlmock.NewRows(feedColumns()))

	repo := postgres.NewFeedRepo(db)
	got, err := repo.GetByURL(context.Background(), "https://missing.example.com/feed")
	if err != nil {
		t.Fatalf("GetByURL err=%v", err)
	}
	if got != nil {
		t.Fatalf("GetByURL = %+v, want nil for missing feed", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFeedRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO rss_feeds`)).
		WithArgs("https://example.com/feed", "example", "en", entity.FeedStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	repo := postgres.NewFeedRepo(db)
	feed := &entity.Feed{
		URL: "https://example.com/feed", Name: "example", Language: "en",
		Status: entity.FeedStatusActive,
	}
	if err := repo.Create(context.Background(), feed); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if feed.ID != 7 {
		t.Errorf("ID = %d, want 7", feed.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFeedRepo_TouchFetchedAt(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE rss_feeds SET`)).
		WithArgs(now, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewFeedRepo(db)
	if err := repo.TouchFetchedAt(context.Background(), 1, now); err != nil {
		t.Fatalf("TouchFetchedAt err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFeedRepo_TouchFetchedAt_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE rss_feeds SET`)).
		WithArgs(now, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewFeedRepo(db)
	if err := repo.TouchFetchedAt(context.Background(), 42, now); err == nil {
		t.Fatal("TouchFetchedAt err=nil, want error for missing feed")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
