/*
Package youtube provides thin clients for the YouTube Data API v3 and
for transcript retrieval.

Both clients are rate limited client-side and return typed errors so the
pipeline can distinguish a missing transcript from a request failure.
*/
package youtube

import (
	"net/url"
	"strings"
)

const videoIDLength = 11

// ExtractVideoID pulls the video id out of the common YouTube URL
// shapes, or returns the input unchanged when it already looks like an
// id. Returns "" when nothing id-like is found.
func ExtractVideoID(raw string) string {
	if raw == "" {
		return ""
	}
	if isVideoID(raw) {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	switch host {
	case "youtube.com", "m.youtube.com":
		if parsed.Path == "/watch" {
			if id := parsed.Query().Get("v"); isVideoID(id) {
				return id
			}
			return ""
		}
		if rest, ok := strings.CutPrefix(parsed.Path, "/embed/"); ok {
			if id, _, _ := strings.Cut(rest, "?"); isVideoID(id) {
				return id
			}
		}
	case "youtu.be":
		if id := strings.TrimPrefix(parsed.Path, "/"); isVideoID(id) {
			return id
		}
	}

	return ""
}

func isVideoID(s string) bool {
	if len(s) != videoIDLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
