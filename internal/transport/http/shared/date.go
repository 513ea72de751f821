package shared

import (
	"strings"
	"time"
)

// ParseDate reads an archive cutoff or search bound. A full RFC3339
// timestamp is taken as-is; a bare YYYY-MM-DD means midnight UTC of that
// day, which for a cutoff archives everything strictly before the date.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}
