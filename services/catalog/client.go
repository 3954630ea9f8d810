package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"reeltrack/models"
)

const tmdbBaseURL = "https://api.themoviedb.org/3"

var (
	ErrNotConfigured = errors.New("tmdb api key not configured")
	ErrQueryRequired = errors.New("search query is required")
)

// Client talks to the TMDB HTTP API. It throttles requests and retries
// transient failures with exponential backoff.
type Client struct {
	apiKey   string
	language string
	httpc    *http.Client

	// Rate limiting
	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

func NewClient(apiKey, language string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		apiKey:      strings.TrimSpace(apiKey),
		language:    strings.TrimSpace(language),
		httpc:       httpc,
		minInterval: 20 * time.Millisecond, // TMDB has generous rate limits
	}
}

func (c *Client) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

type tmdbListResponse struct {
	Results []struct {
		ID         int64  `json:"id"`
		Title      string `json:"title"`
		PosterPath string `json:"poster_path"`
		Overview   string `json:"overview"`
	} `json:"results"`
}

// Search queries the catalog by title.
func (c *Client) Search(ctx context.Context, query string) ([]models.CatalogItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	return c.fetchList(ctx, "search/movie", url.Values{"query": []string{query}})
}

// Similar returns titles the catalog considers similar to the given movie.
func (c *Client) Similar(ctx context.Context, tmdbID int64) ([]models.CatalogItem, error) {
	return c.fetchList(ctx, fmt.Sprintf("movie/%d/similar", tmdbID), nil)
}

// Popular returns the catalog's currently popular feed.
func (c *Client) Popular(ctx context.Context) ([]models.CatalogItem, error) {
	return c.fetchList(ctx, "movie/popular", url.Values{"page": []string{"1"}})
}

func (c *Client) fetchList(ctx context.Context, endpoint string, params url.Values) ([]models.CatalogItem, error) {
	if !c.isConfigured() {
		return nil, ErrNotConfigured
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	} else {
		params.Set("language", "en-US")
	}

	requestURL := fmt.Sprintf("%s/%s?%s", tmdbBaseURL, endpoint, params.Encode())

	var payload tmdbListResponse
	if err := c.doGET(ctx, requestURL, &payload); err != nil {
		return nil, err
	}

	items := make([]models.CatalogItem, 0, len(payload.Results))
	for _, r := range payload.Results {
		if r.ID == 0 {
			continue
		}
		items = append(items, models.CatalogItem{
			ID:         r.ID,
			Title:      r.Title,
			PosterPath: r.PosterPath,
			Overview:   r.Overview,
		})
	}

	return items, nil
}

// doGET performs an HTTP GET with rate limiting and retry with exponential
// backoff. Client errors other than 429 are not retried.
func (c *Client) doGET(ctx context.Context, endpoint string, v any) error {
	return retry.Do(
		func() error {
			c.throttle()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return fmt.Errorf("tmdb request failed: %s", resp.Status)
			}
			if resp.StatusCode >= 400 {
				return retry.Unrecoverable(fmt.Errorf("tmdb request failed: %s", resp.Status))
			}

			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode tmdb response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

func (c *Client) throttle() {
	c.throttleMu.Lock()
	defer c.throttleMu.Unlock()

	if since := time.Since(c.lastRequest); since < c.minInterval {
		time.Sleep(c.minInterval - since)
	}
	c.lastRequest = time.Now()
}
