package racer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikirace/wikirace/internal/store"
	"github.com/wikirace/wikirace/internal/wiki"
)

// fakeSource serves links and backlinks from fixed graphs.
type fakeSource struct {
	mu    sync.Mutex
	graph map[string][]string
	back  map[string][]string
	calls int
}

func (f *fakeSource) Links(_ context.Context, title string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.graph[title], nil
}

func (f *fakeSource) ValidatePage(ctx context.Context, title string) ([]string, error) {
	if wiki.IsTechnicalTitle(title) {
		return nil, &wiki.InvalidPageError{Title: title}
	}
	if _, ok := f.graph[title]; !ok {
		return nil, &wiki.InvalidPageError{Title: title}
	}
	return f.Links(ctx, title)
}

func (f *fakeSource) Backlinks(_ context.Context, title string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.back[title], nil
}

type fakeCache struct {
	mu    sync.Mutex
	pages map[string]store.Page
	hits  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{pages: make(map[string]store.Page)}
}

func (f *fakeCache) GetPage(_ context.Context, title string) (store.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	page, ok := f.pages[title]
	if !ok {
		return store.Page{}, store.ErrNotFound
	}
	f.hits++
	return page, nil
}

func (f *fakeCache) SavePage(_ context.Context, page store.Page) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[page.Title] = page
	return nil
}

func testRacer(source LinkSource, cache PageCache, workers int) *Racer {
	return New(source, cache, Options{Workers: workers}, zerolog.Nop())
}

func TestFindPath_DirectLink(t *testing.T) {
	source := &fakeSource{graph: map[string][]string{
		"Дружба": {"Любов", "Рим"},
		"Рим":    {"Італія"},
	}}

	r := testRacer(source, newFakeCache(), 2)
	result, err := r.FindPath(context.Background(), "Дружба", "Рим")
	require.NoError(t, err)
	assert.Equal(t, []string{"Дружба", "Рим"}, result.Path)
	assert.NotEmpty(t, result.RunID)
}

func TestFindPath_TwoHops(t *testing.T) {
	source := &fakeSource{graph: map[string][]string{
		"Дружба": {"Любов", "Італія", "Море"},
		"Любов":  {"Серце"},
		"Італія": {"Рим", "Мілан"},
		"Море":   {"Вода"},
		"Рим":    {},
	}}

	r := testRacer(source, newFakeCache(), 3)
	result, err := r.FindPath(context.Background(), "Дружба", "Рим")
	require.NoError(t, err)
	assert.Equal(t, []string{"Дружба", "Італія", "Рим"}, result.Path)
}

func TestFindPath_NoPath(t *testing.T) {
	source := &fakeSource{graph: map[string][]string{
		"Дружба": {"Любов"},
		"Любов":  {"Серце"},
		"Рим":    {},
	}}

	r := testRacer(source, newFakeCache(), 2)
	result, err := r.FindPath(context.Background(), "Дружба", "Рим")
	require.NoError(t, err)
	assert.Empty(t, result.Path)
	assert.Positive(t, result.PagesLoaded)
}

func TestFindPath_InvalidStart(t *testing.T) {
	source := &fakeSource{graph: map[string][]string{"Рим": {}}}

	r := testRacer(source, newFakeCache(), 2)
	_, err := r.FindPath(context.Background(), "Категорія:Міста", "Рим")
	var invalidErr *wiki.InvalidPageError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "Категорія:Міста", invalidErr.Title)
}

func TestFindPath_UsesCache(t *testing.T) {
	source := &fakeSource{
		graph: map[string][]string{
			"Дружба": {"Італія"},
			"Італія": {"Рим"},
			"Рим":    {},
		},
		back: map[string][]string{
			"Італія": {"Європа"},
		},
	}
	cache := newFakeCache()

	r := testRacer(source, cache, 2)
	first, err := r.FindPath(context.Background(), "Дружба", "Рим")
	require.NoError(t, err)
	require.Equal(t, []string{"Дружба", "Італія", "Рим"}, first.Path)
	assert.Zero(t, first.PagesCached)

	// Cached pages carry their backlinks too.
	cached, err := cache.GetPage(context.Background(), "Італія")
	require.NoError(t, err)
	assert.Equal(t, []string{"Європа"}, cached.Backlinks)
	cache.hits = 0

	// Second run hits the cache for the scanned page.
	second, err := r.FindPath(context.Background(), "Дружба", "Рим")
	require.NoError(t, err)
	assert.Equal(t, first.Path, second.Path)
	assert.Equal(t, 1, second.PagesCached)
}

type failingSource struct {
	fakeSource
}

func (f *failingSource) Links(ctx context.Context, title string) ([]string, error) {
	if title == "Зламана" {
		return nil, errors.New("api unreachable")
	}
	return f.fakeSource.Links(ctx, title)
}

func TestFindPath_WorkerErrorPropagates(t *testing.T) {
	source := &failingSource{fakeSource{graph: map[string][]string{
		"Дружба":  {"Зламана"},
		"Зламана": {},
		"Рим":     {},
	}}}

	r := testRacer(source, newFakeCache(), 2)
	_, err := r.FindPath(context.Background(), "Дружба", "Рим")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api unreachable")
}
