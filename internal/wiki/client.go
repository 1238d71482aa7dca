// Package wiki is a client for the MediaWiki query API, covering the two
// calls a race needs: outgoing links of a page and backlinks to it.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/wikirace/wikirace/internal/constants"
)

// Titles containing these characters are technical or namespaced articles
// (categories, help pages, subpages) and never part of a race path.
const titleRedFlags = "/:"

// InvalidPageError marks a start or finish term that does not resolve to a
// usable article: a technical title, a missing page, or a page without links.
type InvalidPageError struct {
	Title string
}

func (e *InvalidPageError) Error() string {
	if e.Title == "" {
		return "can't resolve wikipedia page for this term"
	}
	return fmt.Sprintf("can't resolve wikipedia page %q", e.Title)
}

// Options configures the client. Zero values fall back to the package
// defaults, so tests only set what they care about.
type Options struct {
	// APIURL overrides the endpoint derived from Language.
	APIURL            string
	Language          string
	LinkLimit         int
	RequestsPerMinute int
	HTTPClient        *http.Client
}

// Client talks to a single Wikipedia edition's api.php endpoint. All calls
// share one rate limiter, so concurrent search workers collectively stay
// under the configured request budget.
type Client struct {
	httpClient *http.Client
	apiURL     string
	linkLimit  int
	limiter    *rate.Limiter
}

func New(opts Options) *Client {
	if opts.Language == "" {
		opts.Language = constants.DefaultWikiLanguage
	}
	if opts.APIURL == "" {
		opts.APIURL = fmt.Sprintf("https://%s.wikipedia.org/w/api.php", opts.Language)
	}
	if opts.LinkLimit == 0 {
		opts.LinkLimit = constants.DefaultLinkLimit
	}
	if opts.RequestsPerMinute == 0 {
		opts.RequestsPerMinute = constants.DefaultRequestsPerMinute
	}

	return &Client{
		httpClient: opts.httpClientOrDefault(),
		apiURL:     opts.APIURL,
		linkLimit:  opts.LinkLimit,
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerMinute)/60.0, 1),
	}
}

func (o Options) httpClientOrDefault() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// IsTechnicalTitle reports whether a title belongs to a technical or
// namespaced article.
func IsTechnicalTitle(title string) bool {
	return strings.ContainsAny(title, titleRedFlags)
}

// queryResponse covers the fields used from action=query responses for both
// prop=links and list=backlinks.
type queryResponse struct {
	Continue struct {
		PlContinue string `json:"plcontinue"`
		BlContinue string `json:"blcontinue"`
	} `json:"continue"`
	Query struct {
		Pages map[string]struct {
			Title   string `json:"title"`
			Missing *any   `json:"missing,omitempty"`
			Links   []struct {
				Title string `json:"title"`
			} `json:"links"`
		} `json:"pages"`
		Backlinks []struct {
			Title string `json:"title"`
		} `json:"backlinks"`
	} `json:"query"`
}

// Links returns up to the configured limit of article links on the given
// page, following API continuation as needed. Technical titles are filtered
// out and do not count against the limit. A missing page returns an empty
// slice, not an error; callers decide whether that invalidates the page.
func (c *Client) Links(ctx context.Context, title string) ([]string, error) {
	var links []string
	plcontinue := ""

	for {
		params := url.Values{
			"action":  {"query"},
			"format":  {"json"},
			"prop":    {"links"},
			"titles":  {title},
			"pllimit": {strconv.Itoa(c.linkLimit)},
		}
		if plcontinue != "" {
			params.Set("plcontinue", plcontinue)
		}

		var response queryResponse
		if err := c.get(ctx, params, &response); err != nil {
			return nil, fmt.Errorf("failed to fetch links for %q: %w", title, err)
		}

		for _, page := range response.Query.Pages {
			if page.Missing != nil {
				return nil, nil
			}
			for _, link := range page.Links {
				if IsTechnicalTitle(link.Title) {
					continue
				}
				links = append(links, link.Title)
				if len(links) >= c.linkLimit {
					return links, nil
				}
			}
		}

		plcontinue = response.Continue.PlContinue
		if plcontinue == "" {
			return links, nil
		}
	}
}

// Backlinks returns up to the configured limit of pages linking to the given
// page.
func (c *Client) Backlinks(ctx context.Context, title string) ([]string, error) {
	params := url.Values{
		"action":  {"query"},
		"format":  {"json"},
		"list":    {"backlinks"},
		"bltitle": {title},
		"bllimit": {strconv.Itoa(c.linkLimit)},
	}

	var response queryResponse
	if err := c.get(ctx, params, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch backlinks for %q: %w", title, err)
	}

	backlinks := make([]string, 0, len(response.Query.Backlinks))
	for _, entry := range response.Query.Backlinks {
		backlinks = append(backlinks, entry.Title)
	}
	return backlinks, nil
}

// ValidatePage checks that a term resolves to a raceable article and returns
// its links. Technical titles and pages without any usable links yield
// InvalidPageError.
func (c *Client) ValidatePage(ctx context.Context, title string) ([]string, error) {
	if IsTechnicalTitle(title) {
		return nil, &InvalidPageError{Title: title}
	}
	links, err := c.Links(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, &InvalidPageError{Title: title}
	}
	return links, nil
}

func (c *Client) get(ctx context.Context, params url.Values, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "wikirace/"+constants.Version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
