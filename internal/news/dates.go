package news

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// knownLayouts are the formats the providers actually send; they are tried
// before falling back to free-text parsing.
var knownLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700", // NYT article search: 2024-03-01T10:00:00+0000
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
	"20060102",
}

// ParsePublishedAt converts a provider date into the canonical timestamp:
// UTC, whole seconds. Empty or unparseable input resolves to now.
func ParsePublishedAt(raw string, now func() time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Canonical(now())
	}
	for _, layout := range knownLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Canonical(t)
		}
	}
	if t, err := dateparse.ParseIn(raw, time.UTC); err == nil {
		return Canonical(t)
	}
	return Canonical(now())
}

// Canonical truncates t to seconds in UTC
func Canonical(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
