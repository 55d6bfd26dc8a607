package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

const (
	defaultAPIBaseURL  = "https://www.googleapis.com/youtube/v3"
	defaultSearchLimit = 10

	// The Data API quota is generous for search volume this low; the
	// limiter mostly guards against accidental tight loops.
	searchRPS   = 2
	searchBurst = 2
)

// ErrNoResults is returned when a search matches nothing.
var ErrNoResults = errors.New("youtube: no results found")

// Video is one search hit with its statistics merged in.
type Video struct {
	Title       string `json:"title"`
	VideoID     string `json:"video_id"`
	URL         string `json:"url"`
	Channel     string `json:"channel"`
	Duration    string `json:"duration"`
	Views       string `json:"views"`
	PublishedAt string `json:"published_at"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

// SearchClient queries the YouTube Data API v3.
type SearchClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// SearchOption configures a SearchClient.
type SearchOption func(*SearchClient)

// WithBaseURL overrides the API endpoint, for tests.
func WithBaseURL(baseURL string) SearchOption {
	return func(c *SearchClient) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) SearchOption {
	return func(c *SearchClient) { c.httpClient = client }
}

// NewSearchClient creates a Data API search client. The apiKey is
// required.
func NewSearchClient(apiKey string, opts ...SearchOption) (*SearchClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube: api key required")
	}

	c := &SearchClient{
		apiKey:     apiKey,
		baseURL:    defaultAPIBaseURL,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(searchRPS, searchBurst),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// SearchVideos finds videos for a query, ordered by view count, and
// merges in per-video statistics.
func (c *SearchClient) SearchVideos(ctx context.Context, query string, limit int, publishedAfter string) ([]Video, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("youtube: search query cannot be empty")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	log.Printf("Searching videos for %q (limit %d)", query, limit)

	params := url.Values{
		"q":          {query},
		"part":       {"id,snippet"},
		"maxResults": {strconv.Itoa(limit)},
		"type":       {"video"},
		"order":      {"viewCount"},
	}
	if publishedAfter != "" {
		params.Set("publishedAfter", normalizePublishedAfter(publishedAfter))
	}

	var searchResp searchResponse
	if err := c.get(ctx, "/search", params, &searchResp); err != nil {
		return nil, fmt.Errorf("youtube: search request failed: %w", err)
	}
	if len(searchResp.Items) == 0 {
		return nil, fmt.Errorf("%w for query: %s", ErrNoResults, query)
	}

	ids := make([]string, 0, len(searchResp.Items))
	for _, item := range searchResp.Items {
		ids = append(ids, item.ID.VideoID)
	}

	var videosResp videosResponse
	err := c.get(ctx, "/videos", url.Values{
		"part": {"statistics,contentDetails"},
		"id":   {strings.Join(ids, ",")},
	}, &videosResp)
	if err != nil {
		// Statistics are decoration; the search hits are still usable.
		log.Printf("Warning: failed to fetch video statistics: %v", err)
	}

	statsByID := make(map[string]videoItem, len(videosResp.Items))
	for _, item := range videosResp.Items {
		statsByID[item.ID] = item
	}

	videos := make([]Video, 0, len(searchResp.Items))
	for _, item := range searchResp.Items {
		stats := statsByID[item.ID.VideoID]
		videos = append(videos, Video{
			Title:       item.Snippet.Title,
			VideoID:     item.ID.VideoID,
			URL:         "https://www.youtube.com/watch?v=" + item.ID.VideoID,
			Channel:     item.Snippet.ChannelTitle,
			Duration:    formatDuration(stats.ContentDetails.Duration),
			Views:       formatViews(stats.Statistics.ViewCount),
			PublishedAt: item.Snippet.PublishedAt,
			Description: item.Snippet.Description,
			Thumbnail:   item.Snippet.Thumbnails.High.URL,
		})
	}

	log.Printf("Found %d videos for %q", len(videos), query)
	return videos, nil
}

// VideoURLs returns just the watch URLs for the top videos of a query.
func (c *SearchClient) VideoURLs(ctx context.Context, query string, limit int, publishedAfter string) ([]string, error) {
	videos, err := c.SearchVideos(ctx, query, limit, publishedAfter)
	if err != nil {
		return nil, err
	}
	urls := make([]string, len(videos))
	for i, video := range videos {
		urls[i] = video.URL
	}
	return urls, nil
}

func (c *SearchClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// normalizePublishedAfter expands partial dates to the RFC 3339 shape
// the Data API requires.
func normalizePublishedAfter(date string) string {
	switch len(date) {
	case 4: // YYYY
		return date + "-01-01T00:00:00Z"
	case 7: // YYYY-MM
		return date + "-01T00:00:00Z"
	case 10: // YYYY-MM-DD
		return date + "T00:00:00Z"
	}
	if !strings.HasSuffix(date, "Z") {
		return date + "Z"
	}
	return date
}

var durationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// formatDuration renders an ISO 8601 duration (PT4M13S) as "4m 13s".
func formatDuration(iso string) string {
	if iso == "" {
		return "Unknown"
	}
	match := durationPattern.FindStringSubmatch(iso)
	if match == nil {
		return iso
	}

	var parts []string
	for i, unit := range []string{"h", "m", "s"} {
		if match[i+1] != "" {
			parts = append(parts, match[i+1]+unit)
		}
	}
	if len(parts) == 0 {
		return "0s"
	}
	return strings.Join(parts, " ")
}

func formatViews(count string) string {
	n, err := strconv.ParseInt(count, 10, 64)
	if err != nil {
		return "Unknown views"
	}
	return fmt.Sprintf("%s views", groupDigits(n))
}

// groupDigits formats 1234567 as "1,234,567".
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var sb strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}

// Wire types for the two Data API endpoints.

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		ChannelTitle string `json:"channelTitle"`
		PublishedAt  string `json:"publishedAt"`
		Description  string `json:"description"`
		Thumbnails   struct {
			High struct {
				URL string `json:"url"`
			} `json:"high"`
		} `json:"thumbnails"`
	} `json:"snippet"`
}

type videosResponse struct {
	Items []videoItem `json:"items"`
}

type videoItem struct {
	ID         string `json:"id"`
	Statistics struct {
		ViewCount string `json:"viewCount"`
	} `json:"statistics"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
}
