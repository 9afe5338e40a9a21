package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
)

// Minimal TMDB v3 client (api-key auth, the movie list and video
// endpoints we need).

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"
	tmdbPosterSize   = "w780"
)

// Channel categories, mapping 1:1 onto TMDB movie list endpoints.
const (
	CategoryUpcoming   = "upcoming"
	CategoryNowPlaying = "now_playing"
	CategoryPopular    = "popular"
	CategoryTopRated   = "top_rated"
)

// Categories lists the supported channel categories in display order.
var Categories = []string{CategoryUpcoming, CategoryNowPlaying, CategoryPopular, CategoryTopRated}

type tmdbClient struct {
	apiKey   string
	language string
	baseURL  string
	httpc    *http.Client
	cache    *diskCache

	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

func newTMDBClient(apiKey, language string, httpc *http.Client, cache *diskCache) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	if strings.TrimSpace(language) == "" {
		language = "en-US"
	}
	return &tmdbClient{
		apiKey:      apiKey,
		language:    language,
		baseURL:     tmdbBaseURL,
		httpc:       httpc,
		cache:       cache,
		minInterval: 25 * time.Millisecond,
	}
}

type tmdbMovie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	GenreIDs    []int64 `json:"genre_ids"`
	PosterPath  string  `json:"poster_path"`
	Popularity  float64 `json:"popularity"`
}

type tmdbMovieList struct {
	Page         int         `json:"page"`
	Results      []tmdbMovie `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

type tmdbVideo struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

type tmdbVideoList struct {
	ID      int64       `json:"id"`
	Results []tmdbVideo `json:"results"`
}

// Movies fetches one page of a category list.
func (c *tmdbClient) Movies(ctx context.Context, category string, page int) (*tmdbMovieList, error) {
	if !isKnownCategory(category) {
		return nil, fmt.Errorf("unknown movie category %q", category)
	}
	if page < 1 {
		page = 1
	}
	cacheKey := fmt.Sprintf("tmdb:movies:%s:%s:%d", category, c.language, page)
	var list tmdbMovieList
	if c.cache != nil && c.cache.read(cacheKey, &list) {
		return &list, nil
	}

	endpoint := fmt.Sprintf("%s/movie/%s?api_key=%s&language=%s&page=%d",
		c.baseURL, category, url.QueryEscape(c.apiKey), url.QueryEscape(c.language), page)
	if err := c.getJSON(ctx, endpoint, &list); err != nil {
		return nil, err
	}
	if c.cache != nil {
		_ = c.cache.write(cacheKey, &list)
	}
	return &list, nil
}

// MovieTrailers returns the movie's YouTube trailers, official uploads
// first.
func (c *tmdbClient) MovieTrailers(ctx context.Context, movieID int64) ([]tmdbVideo, error) {
	cacheKey := "tmdb:videos:" + strconv.FormatInt(movieID, 10)
	var list tmdbVideoList
	if c.cache == nil || !c.cache.read(cacheKey, &list) {
		endpoint := fmt.Sprintf("%s/movie/%d/videos?api_key=%s", c.baseURL, movieID, url.QueryEscape(c.apiKey))
		if err := c.getJSON(ctx, endpoint, &list); err != nil {
			return nil, err
		}
		if c.cache != nil {
			_ = c.cache.write(cacheKey, &list)
		}
	}

	var official, rest []tmdbVideo
	for _, v := range list.Results {
		if !strings.EqualFold(v.Site, "YouTube") || !strings.EqualFold(v.Type, "Trailer") {
			continue
		}
		if v.Official {
			official = append(official, v)
		} else {
			rest = append(rest, v)
		}
	}
	return append(official, rest...), nil
}

// getJSON performs a throttled GET with a small fixed retry for transient
// transport errors.
func (c *tmdbClient) getJSON(ctx context.Context, endpoint string, v any) error {
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
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
				return retry.Unrecoverable(fmt.Errorf("tmdb request failed: %s", resp.Status))
			}
			if resp.StatusCode >= 300 {
				return fmt.Errorf("tmdb request failed: %s", resp.Status)
			}
			return json.NewDecoder(resp.Body).Decode(v)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}

func (c *tmdbClient) throttle() {
	c.throttleMu.Lock()
	defer c.throttleMu.Unlock()
	if wait := c.minInterval - time.Since(c.lastRequest); wait > 0 {
		time.Sleep(wait)
	}
	c.lastRequest = time.Now()
}

func isKnownCategory(category string) bool {
	for _, known := range Categories {
		if category == known {
			return true
		}
	}
	return false
}

// parseReleaseYear extracts the year from a TMDB release date (yyyy-mm-dd).
// Returns 0 when unknown.
func parseReleaseYear(releaseDate string) int {
	if len(releaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(releaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// posterURL builds the full image URL, or "" when the movie has no poster.
func posterURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return tmdbImageBaseURL + "/" + tmdbPosterSize + posterPath
}
