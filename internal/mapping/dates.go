package mapping

import (
	"strings"
	"time"
)

// dateLayouts are tried in order. Day-first layouts come before month-first
// ones, so "03/04/2024" reads as 3 April.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"20060102",
}

// ParseDate parses value with the first layout that accepts it.
// Surrounding whitespace is ignored. The second result is false when no
// layout matches.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate reformats value into layout. Unparsable values yield "".
func FormatDate(value, layout string) string {
	t, ok := ParseDate(value)
	if !ok {
		return ""
	}
	if layout == "" {
		layout = OutputDateLayout
	}
	return t.Format(layout)
}
