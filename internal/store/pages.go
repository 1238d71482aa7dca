package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a page is not in the cache.
var ErrNotFound = errors.New("page not found in cache")

// Page is one cached Wikipedia page with its outgoing links and backlinks.
type Page struct {
	Title     string
	Links     []string
	Backlinks []string
}

// GetPage looks a page up by title.
func (s *Store) GetPage(ctx context.Context, title string) (Page, error) {
	var page Page
	query := `SELECT title, links, backlinks FROM pages WHERE title = $1`

	err := s.pool.QueryRow(ctx, query, title).Scan(&page.Title, &page.Links, &page.Backlinks)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Page{}, ErrNotFound
		}
		return Page{}, fmt.Errorf("failed to get page %q: %w", title, err)
	}
	return page, nil
}

// SavePage upserts a page. Concurrent workers may race on the same title;
// the last write wins and both carry the same API data anyway.
func (s *Store) SavePage(ctx context.Context, page Page) error {
	query := `
        INSERT INTO pages (title, links, backlinks)
        VALUES ($1, $2, $3)
        ON CONFLICT (title) DO UPDATE SET
            links = excluded.links,
            backlinks = excluded.backlinks
    `
	if _, err := s.pool.Exec(ctx, query, page.Title, page.Links, page.Backlinks); err != nil {
		return fmt.Errorf("failed to save page %q: %w", page.Title, err)
	}
	return nil
}

// PageCount returns the number of cached pages, shown by `stack status`.
func (s *Store) PageCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM pages`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return count, nil
}
