package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reelsocial/internal/observability"
)

const peerName = "tmdb"

// Listing tags accepted by MoviesByTag.
var movieTags = map[string]bool{
	"popular":     true,
	"now_playing": true,
	"upcoming":    true,
	"top_rated":   true,
}

// ErrInvalidTag is returned by MoviesByTag for an unknown listing.
var ErrInvalidTag = errors.New("unknown movie tag")

// APIError is a non-2xx answer from the catalog.
type APIError struct {
	StatusCode    int
	StatusMessage string
}

func (e *APIError) Error() string {
	if e.StatusMessage != "" {
		return fmt.Sprintf("catalog returned status %d: %s", e.StatusCode, e.StatusMessage)
	}
	return fmt.Sprintf("catalog returned status %d", e.StatusCode)
}

// DiscoverQuery filters /discover/movie. Zero values are omitted.
type DiscoverQuery struct {
	Year   int
	Genre  string
	SortBy string
	Page   int
}

// Client calls the catalog's REST API. Every request carries the api_key and
// language query parameters from Config.
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *Client) SearchMovies(ctx context.Context, name string, page int) (*MoviePage, error) {
	q := url.Values{}
	q.Set("query", name)
	setPage(q, page)
	var out MoviePage
	if err := c.get(ctx, "search", "/search/movie", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MoviesByTag(ctx context.Context, tag string, page int) (*MoviePage, error) {
	if !movieTags[tag] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	q := url.Values{}
	setPage(q, page)
	var out MoviePage
	if err := c.get(ctx, "tag", "/movie/"+tag, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Movie(ctx context.Context, id int64) (*RawMovieDetail, error) {
	var out RawMovieDetail
	if err := c.get(ctx, "movie", "/movie/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Credits(ctx context.Context, id int64) (*RawCredits, error) {
	var out RawCredits
	if err := c.get(ctx, "credits", "/movie/"+strconv.FormatInt(id, 10)+"/credits", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TopRated(ctx context.Context) (*MoviePage, error) {
	var out MoviePage
	if err := c.get(ctx, "top_rated", "/movie/top_rated", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Videos(ctx context.Context, id int64) (*RawVideos, error) {
	var out RawVideos
	if err := c.get(ctx, "videos", "/movie/"+strconv.FormatInt(id, 10)+"/videos", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Discover(ctx context.Context, dq DiscoverQuery) (*MoviePage, error) {
	q := url.Values{}
	if dq.SortBy != "" {
		q.Set("sort_by", dq.SortBy)
	}
	if dq.Year > 0 {
		q.Set("year", strconv.Itoa(dq.Year))
	}
	if dq.Genre != "" {
		q.Set("with_genres", dq.Genre)
	}
	setPage(q, dq.Page)
	var out MoviePage
	if err := c.get(ctx, "discover", "/discover/movie", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func setPage(q url.Values, page int) {
	if page < 1 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out any) (err error) {
	start := time.Now()
	ctx, span := observability.StartClientSpan(ctx, peerName, endpoint)
	defer func() {
		observability.ObserveCatalogRequest(endpoint, start, err)
		observability.EndSpan(span, err)
	}()

	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	query.Set("language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body struct {
			StatusMessage string `json:"status_message"`
		}
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096)); readErr == nil {
			if json.Unmarshal(data, &body) == nil {
				apiErr.StatusMessage = body.StatusMessage
			}
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
