package source

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/sift/internal/model"
)

// SQLiteSource implements Source using a SQLite database.
type SQLiteSource struct {
	db   *sql.DB
	path string
}

// NewSQLiteSource creates a new SQLiteSource with the given database path.
func NewSQLiteSource(path string) (*SQLiteSource, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteSource{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteSource) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func (s *SQLiteSource) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS bookmarks (
			id TEXT PRIMARY KEY NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_bookmarks_url ON bookmarks(url);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Enumerate returns all bookmarks in insertion order, deduplicated by URL
// and filtered to bookmarkable schemes.
func (s *SQLiteSource) Enumerate(ctx context.Context) ([]model.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, url, created_at
		FROM bookmarks
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookmarks, err := scanBookmarks(rows)
	if err != nil {
		return nil, err
	}
	return Dedup(bookmarks), nil
}

// Create stores a new bookmark with generated id and timestamp.
func (s *SQLiteSource) Create(ctx context.Context, params model.NewBookmarkParams) (model.Bookmark, error) {
	b := model.NewBookmark(params)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookmarks (id, title, url, created_at)
		VALUES (?, ?, ?, ?)
	`, b.ID, b.Title, b.URL, b.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return model.Bookmark{}, err
	}
	return b, nil
}

// Remove deletes the bookmark with the given id.
func (s *SQLiteSource) Remove(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id)
	return err
}

// Search returns bookmarks with the exact URL.
func (s *SQLiteSource) Search(ctx context.Context, url string) ([]model.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, url, created_at
		FROM bookmarks
		WHERE url = ?
	`, url)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookmarks(rows)
}

func scanBookmarks(rows *sql.Rows) ([]model.Bookmark, error) {
	var bookmarks []model.Bookmark
	for rows.Next() {
		var b model.Bookmark
		var createdAtStr string
		if err := rows.Scan(&b.ID, &b.Title, &b.URL, &createdAtStr); err != nil {
			return nil, err
		}
		b.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// DefaultSQLitePath returns the default database path: ~/.config/sift/bookmarks.db
func DefaultSQLitePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "sift", "bookmarks.db"), nil
}
