package trend

import (
	"fmt"
	"time"
)

// dateFormats are the transcript date layouts seen in the wild, tried in
// order. Upstream sources do not normalize dates.
var dateFormats = []string{
	"2006-01-02", // 2024-08-01
	"1/2/06",     // 10/18/23
	"1/2/2006",   // 10/18/2023
	"2/1/2006",   // 18/10/2023
	"2-1-2006",   // 18-10-2023
}

// ParseDate parses a transcript date in any of the supported formats.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("trend: unparseable date %q", s)
}

// ParseDateOrZero parses a transcript date, returning a very old sentinel
// time when the value cannot be parsed. Useful for sorting mixed-format
// corpora where a hard error per record would be too strict.
func ParseDateOrZero(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		return time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}
