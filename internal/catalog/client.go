// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog maps typed requests onto the Open Library search and
// work endpoints and classifies their outcomes.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/book-nook/internal/logging"
	"github.com/pdiddy/book-nook/internal/metrics"
	"github.com/pdiddy/book-nook/pkg/types"
)

const (
	workPrefix = "/works/"

	// CoverUnavailable is returned by CoverURL when a work has no cover.
	CoverUnavailable = "/unavailable.png"

	// searchPage is fixed; pagination beyond the first page is not offered.
	searchPage = 1
)

// Client talks to the catalog service.
type Client struct {
	baseURL   string
	coversURL string
	http      *http.Client
	log       logrus.FieldLogger
	metrics   *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records request counts and durations on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// New returns a Client for the configured catalog. A nil httpClient uses
// http.DefaultClient.
func New(cfg types.CatalogConfig, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		coversURL: strings.TrimRight(cfg.CoversURL, "/"),
		http:      httpClient,
		log:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search queries the catalog by title or author. The text is trimmed and
// must not be blank. The language filter is omitted when it is empty or
// one of the "all languages" aliases.
func (c *Client) Search(ctx context.Context, mode types.SearchMode, text, language string) (types.SearchPage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.SearchPage{}, ErrBlankQuery
	}

	reqURL := c.baseURL + "/search.json?" + SearchParams(mode, text, language).Encode()

	var page types.SearchPage
	if err := c.getJSON(ctx, OpSearch, reqURL, &page); err != nil {
		return types.SearchPage{}, err
	}
	return page, nil
}

// SearchParams builds the query string for a search. Title and author are
// mutually exclusive; an unknown mode searches by title.
func SearchParams(mode types.SearchMode, text, language string) url.Values {
	field := "title"
	if mode == types.ModeAuthor {
		field = "author"
	}
	params := url.Values{
		field:  {text},
		"page": {strconv.Itoa(searchPage)},
	}
	if lang := strings.TrimSpace(language); !IsNoFilter(lang) {
		params.Set("language", lang)
	}
	return params
}

// IsNoFilter reports whether language means "do not filter by language".
func IsNoFilter(language string) bool {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "", "all", "any":
		return true
	}
	return false
}

// FetchDetail retrieves the detail record of one work. key is either a
// work path ("/works/OL45883W") or a bare identifier ("OL45883W").
func (c *Client) FetchDetail(ctx context.Context, key string) (types.DetailRecord, error) {
	reqURL := c.baseURL + NormalizeWorkKey(key) + ".json"

	var detail types.DetailRecord
	if err := c.getJSON(ctx, OpDetail, reqURL, &detail); err != nil {
		return types.DetailRecord{}, err
	}
	return detail, nil
}

// NormalizeWorkKey returns key as a work path, prepending /works/ to bare
// identifiers.
func NormalizeWorkKey(key string) string {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, workPrefix) {
		return key
	}
	return workPrefix + strings.TrimLeft(key, "/")
}

// CoverURL derives the cover image URL on this client's covers host.
func (c *Client) CoverURL(coverID int, size types.CoverSize) string {
	return CoverURL(c.coversURL, coverID, size)
}

// CoverURL derives a cover image URL from a cover id. It returns
// CoverUnavailable when there is no cover; unknown sizes fall back to M.
func CoverURL(host string, coverID int, size types.CoverSize) string {
	if coverID <= 0 {
		return CoverUnavailable
	}
	switch size {
	case types.CoverSmall, types.CoverMedium, types.CoverLarge:
	default:
		size = types.CoverMedium
	}
	return fmt.Sprintf("%s/b/id/%d-%s.jpg", strings.TrimRight(host, "/"), coverID, size)
}

// getJSON performs a GET and decodes a JSON body into v. Every failure is
// reported as a *RequestFailedError for op.
func (c *Client) getJSON(ctx context.Context, op, reqURL string, v any) (err error) {
	start := time.Now()
	log := c.log.WithFields(logrus.Fields{"op": op, "url": reqURL})
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "failed"
			var rf *RequestFailedError
			if errors.As(err, &rf) {
				log.WithField("cause", rf.Detail()).Warn("catalog request failed")
			}
		}
		c.metrics.ObserveCatalog(op, outcome, time.Since(start))
	}()
	defer logging.Track(log, "catalog "+op)()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &RequestFailedError{Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &RequestFailedError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestFailedError{Op: op, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &RequestFailedError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("parsing response: %w", err)}
	}
	return nil
}
