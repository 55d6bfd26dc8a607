package youtube

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

const (
	defaultTimedTextURL = "https://www.youtube.com/api/timedtext"
	defaultLanguage     = "en"

	transcriptRPS   = 2
	transcriptBurst = 2
)

var (
	// ErrInvalidVideoID is returned when no video id can be extracted
	// from the input.
	ErrInvalidVideoID = errors.New("youtube: invalid video URL or id")

	// ErrTranscriptNotAvailable is returned when the video exists but
	// has no retrievable transcript.
	ErrTranscriptNotAvailable = errors.New("youtube: transcript not available")
)

// TranscriptClient fetches video transcripts from the timedtext
// endpoint.
type TranscriptClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// TranscriptOption configures a TranscriptClient.
type TranscriptOption func(*TranscriptClient)

// WithTimedTextURL overrides the transcript endpoint, for tests.
func WithTimedTextURL(baseURL string) TranscriptOption {
	return func(c *TranscriptClient) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithTranscriptHTTPClient sets a custom HTTP client.
func WithTranscriptHTTPClient(client *http.Client) TranscriptOption {
	return func(c *TranscriptClient) { c.httpClient = client }
}

// NewTranscriptClient creates a transcript client.
func NewTranscriptClient(opts ...TranscriptOption) *TranscriptClient {
	c := &TranscriptClient{
		baseURL:    defaultTimedTextURL,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(transcriptRPS, transcriptBurst),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// GetTranscript retrieves the transcript for a video URL or id and
// joins the caption snippets into a single string. Languages are tried
// in order; when none are given, English is tried.
func (c *TranscriptClient) GetTranscript(ctx context.Context, videoURL string, languages ...string) (string, error) {
	videoID := ExtractVideoID(videoURL)
	if videoID == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidVideoID, videoURL)
	}
	if len(languages) == 0 {
		languages = []string{defaultLanguage}
	}

	log.Printf("Retrieving transcript for video %s", videoID)

	var lastErr error
	for _, lang := range languages {
		text, err := c.fetchTranscript(ctx, videoID, lang)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, ErrTranscriptNotAvailable) {
			return "", err
		}
		lastErr = err
	}

	available, err := c.AvailableLanguages(ctx, videoID)
	if err == nil && len(available) > 0 {
		return "", fmt.Errorf("%w for video %s in requested languages; available: %s",
			ErrTranscriptNotAvailable, videoID, strings.Join(available, ", "))
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", fmt.Errorf("%w for video %s", ErrTranscriptNotAvailable, videoID)
}

func (c *TranscriptClient) fetchTranscript(ctx context.Context, videoID, lang string) (string, error) {
	body, err := c.get(ctx, url.Values{"v": {videoID}, "lang": {lang}})
	if err != nil {
		return "", err
	}

	var doc timedTextDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("youtube: transcript decode failed for %s: %w", videoID, err)
	}
	if len(doc.Texts) == 0 {
		return "", fmt.Errorf("%w for video %s (lang %s)", ErrTranscriptNotAvailable, videoID, lang)
	}

	snippets := make([]string, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		snippet := strings.TrimSpace(html.UnescapeString(t.Content))
		if snippet != "" {
			snippets = append(snippets, snippet)
		}
	}
	log.Printf("Retrieved transcript with %d entries for video %s", len(snippets), videoID)
	return strings.Join(snippets, " "), nil
}

// AvailableLanguages lists the transcript language codes published for
// a video URL or id.
func (c *TranscriptClient) AvailableLanguages(ctx context.Context, videoURL string) ([]string, error) {
	videoID := ExtractVideoID(videoURL)
	if videoID == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidVideoID, videoURL)
	}

	body, err := c.get(ctx, url.Values{"v": {videoID}, "type": {"list"}})
	if err != nil {
		return nil, err
	}

	var doc trackListDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("youtube: track list decode failed for %s: %w", videoID, err)
	}

	languages := make([]string, 0, len(doc.Tracks))
	for _, track := range doc.Tracks {
		languages = append(languages, track.LangCode)
	}
	return languages, nil
}

func (c *TranscriptClient) get(ctx context.Context, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube: transcript request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: video not found", ErrTranscriptNotAvailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	// The endpoint answers 200 with an empty body when captions are
	// disabled.
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrTranscriptNotAvailable)
	}
	return body, nil
}

type timedTextDoc struct {
	XMLName xml.Name        `xml:"transcript"`
	Texts   []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Start   string `xml:"start,attr"`
	Dur     string `xml:"dur,attr"`
	Content string `xml:",chardata"`
}

type trackListDoc struct {
	XMLName xml.Name        `xml:"transcript_list"`
	Tracks  []trackListItem `xml:"track"`
}

type trackListItem struct {
	LangCode string `xml:"lang_code,attr"`
	Name     string `xml:"name,attr"`
}
