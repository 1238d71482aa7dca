// Package racer finds a chain of links between two Wikipedia pages. The
// search is shallow by construction: it checks for a direct link first, then
// scans the start page's links one hop out with a pool of workers. Pages are
// served from the PostgreSQL cache when possible so repeated races get faster.
package racer

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid"
	"github.com/rs/zerolog"

	"github.com/wikirace/wikirace/internal/store"
)

// LinkSource yields the outgoing links and backlinks of a page, typically the
// MediaWiki API.
type LinkSource interface {
	ValidatePage(ctx context.Context, title string) ([]string, error)
	Links(ctx context.Context, title string) ([]string, error)
	Backlinks(ctx context.Context, title string) ([]string, error)
}

// PageCache stores fetched pages so later races can skip the API.
type PageCache interface {
	GetPage(ctx context.Context, title string) (store.Page, error)
	SavePage(ctx context.Context, page store.Page) error
}

// Result is the outcome of one race. An empty Path means the search completed
// without finding a chain within its depth.
type Result struct {
	RunID       string
	Start       string
	Finish      string
	Path        []string
	Duration    time.Duration
	PagesLoaded int
	PagesCached int
}

type Options struct {
	Workers int
}

type Racer struct {
	source  LinkSource
	cache   PageCache
	workers int
	logger  zerolog.Logger

	mu          sync.Mutex
	pagesLoaded int
	pagesCached int
}

func New(source LinkSource, cache PageCache, opts Options, logger zerolog.Logger) *Racer {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Racer{
		source:  source,
		cache:   cache,
		workers: workers,
		logger:  logger,
	}
}

// FindPath races from start to finish. Both titles must name real,
// non-technical pages; otherwise a *wiki.InvalidPageError comes back from the
// source and is returned as-is.
func (r *Racer) FindPath(ctx context.Context, start, finish string) (Result, error) {
	began := time.Now()
	r.mu.Lock()
	r.pagesLoaded = 0
	r.pagesCached = 0
	r.mu.Unlock()

	result := Result{
		RunID:  newRunID(began),
		Start:  start,
		Finish: finish,
	}

	startLinks, err := r.source.ValidatePage(ctx, start)
	if err != nil {
		return Result{}, err
	}
	if _, err := r.source.ValidatePage(ctx, finish); err != nil {
		return Result{}, err
	}

	r.fetchAndRemember(ctx, start, startLinks)

	if contains(startLinks, finish) {
		result.Path = []string{start, finish}
		result.Duration = time.Since(began)
		result.PagesLoaded, result.PagesCached = r.stats()
		return result, nil
	}

	middle, err := r.scanLinks(ctx, startLinks, finish)
	if err != nil {
		return Result{}, err
	}
	if middle != "" {
		result.Path = []string{start, middle, finish}
	}

	result.Duration = time.Since(began)
	result.PagesLoaded, result.PagesCached = r.stats()
	return result, nil
}

// scanLinks checks every candidate page for a link to finish, fanning the
// candidates out over the worker pool. The first hit wins and cancels the
// rest.
func (r *Racer) scanLinks(parent context.Context, candidates []string, finish string) (string, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	titles := make(chan string)
	hits := make(chan string, 1)
	errs := make(chan error, 1)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for title := range titles {
				links, err := r.pageLinks(ctx, title)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					select {
					case errs <- err:
					default:
					}
					cancel()
					return
				}
				if contains(links, finish) {
					select {
					case hits <- title:
					default:
					}
					cancel()
					return
				}
			}
		}()
	}

feed:
	for _, title := range candidates {
		select {
		case titles <- title:
		case <-ctx.Done():
			break feed
		}
	}
	close(titles)
	wg.Wait()

	select {
	case hit := <-hits:
		return hit, nil
	default:
	}
	select {
	case err := <-errs:
		return "", err
	default:
	}
	if err := parent.Err(); err != nil {
		return "", err
	}
	return "", nil
}

// pageLinks returns the outgoing links of a page, cache first.
func (r *Racer) pageLinks(ctx context.Context, title string) ([]string, error) {
	if page, err := r.cache.GetPage(ctx, title); err == nil {
		r.mu.Lock()
		r.pagesCached++
		r.mu.Unlock()
		return page.Links, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		r.logger.Warn().Err(err).Str("title", title).Msg("Page cache lookup failed, falling back to API")
	}

	links, err := r.source.Links(ctx, title)
	if err != nil {
		return nil, err
	}
	r.fetchAndRemember(ctx, title, links)
	return links, nil
}

// fetchAndRemember completes a freshly fetched page with its backlinks and
// caches it. Backlinks are informational, so a failure there downgrades to a
// log line instead of failing the race.
func (r *Racer) fetchAndRemember(ctx context.Context, title string, links []string) {
	backlinks, err := r.source.Backlinks(ctx, title)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Debug().Err(err).Str("title", title).Msg("Failed to fetch backlinks")
		}
		backlinks = nil
	}
	r.rememberPage(ctx, title, links, backlinks)
}

func (r *Racer) rememberPage(ctx context.Context, title string, links, backlinks []string) {
	r.mu.Lock()
	r.pagesLoaded++
	r.mu.Unlock()

	page := store.Page{Title: title, Links: links, Backlinks: backlinks}
	if err := r.cache.SavePage(ctx, page); err != nil && ctx.Err() == nil {
		r.logger.Warn().Err(err).Str("title", title).Msg("Failed to cache page")
	}
}

func (r *Racer) stats() (loaded, cached int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pagesLoaded, r.pagesCached
}

func newRunID(at time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(at.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(at), entropy).String()
}

func contains(links []string, title string) bool {
	for _, link := range links {
		if link == title {
			return true
		}
	}
	return false
}
