package itunes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"otodoki/domain"
)

var (
	// ErrRateLimited — the catalog asked us to slow down, retryable under backoff.
	ErrRateLimited = errors.New("catalog rate limited")
	// ErrMalformedResponse — payload did not parse, skip this cycle.
	ErrMalformedResponse = errors.New("catalog returned malformed response")
)

type SearchConfig struct {
	BaseURL  string
	Country  string
	PageSize int
	Timeout  time.Duration
}

// SearchClient queries the iTunes Search API for track records.
type SearchClient struct {
	searchConfig SearchConfig
	httpClient   *http.Client
}

func NewSearchClient(cfg SearchConfig) *SearchClient {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &SearchClient{
		searchConfig: cfg,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
	}
}

type searchResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []searchResult `json:"results"`
}

type searchResult struct {
	TrackID          int64  `json:"trackId"`
	TrackName        string `json:"trackName"`
	ArtistName       string `json:"artistName"`
	PrimaryGenreName string `json:"primaryGenreName"`
	ReleaseDate      string `json:"releaseDate"`
	PreviewURL       string `json:"previewUrl"`
	ArtworkURL100    string `json:"artworkUrl100"`
}

func (c *SearchClient) Search(ctx context.Context, params domain.SearchParams) ([]domain.Track, error) {
	q := url.Values{}
	q.Set("term", params.Term)
	q.Set("entity", params.Entity)
	if params.Attribute != "" {
		q.Set("attribute", params.Attribute)
	}
	q.Set("limit", strconv.Itoa(c.searchConfig.PageSize))
	if c.searchConfig.Country != "" {
		q.Set("country", c.searchConfig.Country)
	}

	reqURL := c.searchConfig.BaseURL + "/search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests || res.StatusCode == http.StatusForbidden {
		return nil, ErrRateLimited
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("catalog returned status %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog response: %w", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	tracks := make([]domain.Track, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		// rows without an id or a playable preview are useless downstream
		if r.TrackID == 0 || r.PreviewURL == "" {
			continue
		}

		tracks = append(tracks, domain.Track{
			CatalogID:   strconv.FormatInt(r.TrackID, 10),
			Title:       r.TrackName,
			Artist:      r.ArtistName,
			Genre:       r.PrimaryGenreName,
			ReleaseYear: releaseYear(r.ReleaseDate),
			PreviewURL:  r.PreviewURL,
			ArtworkURL:  r.ArtworkURL100,
		})
	}

	return tracks, nil
}

// releaseYear pulls the year out of an RFC3339-ish release date, 0 if absent.
func releaseYear(releaseDate string) int {
	if len(releaseDate) < 4 {
		return 0
	}

	year, err := strconv.Atoi(releaseDate[:4])
	if err != nil {
		return 0
	}

	return year
}
