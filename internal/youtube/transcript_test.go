package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newFakeTimedText(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		videoID := r.URL.Query().Get("v")

		if r.URL.Query().Get("type") == "list" {
			if videoID == "nocaptions1" {
				return // empty body, captions disabled
			}
			fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?>
<transcript_list>
  <track lang_code="en" name="English"/>
  <track lang_code="es" name="Spanish"/>
</transcript_list>`)
			return
		}

		lang := r.URL.Query().Get("lang")
		switch {
		case videoID == "nocaptions1":
			// Captions disabled: 200 with an empty body.
		case lang != "en":
			// No track in this language.
		default:
			fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.0" dur="2.5">Welcome back to the channel.</text>
  <text start="2.5" dur="3.1">Today we talk about Go &amp; performance.</text>
  <text start="5.6" dur="1.2">Let&#39;s dive in.</text>
</transcript>`)
		}
	}))
}

func TestGetTranscript(t *testing.T) {
	server := newFakeTimedText(t)
	defer server.Close()

	client := NewTranscriptClient(WithTimedTextURL(server.URL))

	text, err := client.GetTranscript(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("transcript failed: %v", err)
	}

	want := "Welcome back to the channel. Today we talk about Go & performance. Let's dive in."
	if text != want {
		t.Errorf("unexpected transcript:\n got: %q\nwant: %q", text, want)
	}
}

func TestGetTranscript_InvalidURL(t *testing.T) {
	client := NewTranscriptClient()

	_, err := client.GetTranscript(context.Background(), "not a url")
	if !errors.Is(err, ErrInvalidVideoID) {
		t.Errorf("expected ErrInvalidVideoID, got %v", err)
	}
}

func TestGetTranscript_CaptionsDisabled(t *testing.T) {
	server := newFakeTimedText(t)
	defer server.Close()

	client := NewTranscriptClient(WithTimedTextURL(server.URL))

	_, err := client.GetTranscript(context.Background(), "nocaptions1")
	if !errors.Is(err, ErrTranscriptNotAvailable) {
		t.Errorf("expected ErrTranscriptNotAvailable, got %v", err)
	}
}

func TestGetTranscript_LanguageFallback(t *testing.T) {
	server := newFakeTimedText(t)
	defer server.Close()

	client := NewTranscriptClient(WithTimedTextURL(server.URL))

	// The fake only serves English; the French attempt falls through.
	text, err := client.GetTranscript(context.Background(), "dQw4w9WgXcQ", "fr", "en")
	if err != nil {
		t.Fatalf("transcript failed: %v", err)
	}
	if text == "" {
		t.Error("expected transcript text from fallback language")
	}
}

func TestGetTranscript_ReportsAvailableLanguages(t *testing.T) {
	server := newFakeTimedText(t)
	defer server.Close()

	client := NewTranscriptClient(WithTimedTextURL(server.URL))

	_, err := client.GetTranscript(context.Background(), "dQw4w9WgXcQ", "de")
	if !errors.Is(err, ErrTranscriptNotAvailable) {
		t.Fatalf("expected ErrTranscriptNotAvailable, got %v", err)
	}
	// The error names what is actually published for the video.
	if got := err.Error(); !strings.Contains(got, "en") || !strings.Contains(got, "es") {
		t.Errorf("expected available languages in error, got %q", got)
	}
}

func TestAvailableLanguages(t *testing.T) {
	server := newFakeTimedText(t)
	defer server.Close()

	client := NewTranscriptClient(WithTimedTextURL(server.URL))

	languages, err := client.AvailableLanguages(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("languages failed: %v", err)
	}
	if len(languages) != 2 || languages[0] != "en" || languages[1] != "es" {
		t.Errorf("unexpected languages: %v", languages)
	}
}
