package archive

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"logvault/internal/platform/compress"
)

// NeedsArchive applies the scheduling predicate: row count at or above the
// threshold, or the table has gone threshold_days without an archive. A
// never-archived table is immediately due.
func NeedsArchive(stats TableStats, now time.Time) bool {
	if stats.ArchiveThresholdRows > 0 && stats.CurrentRowCount >= stats.ArchiveThresholdRows {
		return true
	}
	if stats.ArchiveThresholdDays <= 0 {
		return false
	}
	if stats.LastArchiveDate == nil {
		return true
	}
	age := now.Sub(*stats.LastArchiveDate)
	return age >= time.Duration(stats.ArchiveThresholdDays)*24*time.Hour
}

// FileName builds {table}_{YYYY-MM}_{suffix}.json[.gz|.zst][.enc].
func FileName(table string, period time.Time, compression string, encrypted bool) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("%s_%s_%s.json%s", table, period.Format("2006-01"), suffix, compress.Ext(compression))
	if encrypted {
		name += ".enc"
	}
	return name
}

// PeriodsOverlap reports whether [aStart, aEnd] intersects [bStart, bEnd].
// Nil bounds are open.
func PeriodsOverlap(aStart, aEnd, bStart, bEnd *time.Time) bool {
	if aStart != nil && bEnd != nil && aStart.After(*bEnd) {
		return false
	}
	if aEnd != nil && bStart != nil && aEnd.Before(*bStart) {
		return false
	}
	return true
}

// recordTimeFields is the order tried when pulling a timestamp out of an
// archived row for date filtering.
var recordTimeFields = []string{"created_at", "timestamp", "occurred_at", "logged_at", "updated_at"}

// RecordTime extracts a best-effort timestamp from an archived row.
func RecordTime(row map[string]any) (time.Time, bool) {
	for _, field := range recordTimeFields {
		raw, ok := row[field]
		if !ok || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case time.Time:
			return v, true
		case string:
			for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
				if parsed, err := time.Parse(layout, v); err == nil {
					return parsed, true
				}
			}
		}
	}
	return time.Time{}, false
}

// MatchesQuery applies the in-memory search predicate to one archived row:
// equality on the entity dimensions, inclusive date range on the record
// timestamp. Rows without a parsable timestamp pass the date filter.
func MatchesQuery(row map[string]any, q SearchQuery) bool {
	if q.User != "" && !fieldEquals(row, q.User, "user_id", "user", "client_id") {
		return false
	}
	if q.Endpoint != "" && !fieldEquals(row, q.Endpoint, "endpoint", "path", "url") {
		return false
	}
	if q.Action != "" && !fieldEquals(row, q.Action, "action", "method", "event") {
		return false
	}
	if q.IPAddress != "" && !fieldEquals(row, q.IPAddress, "ip_address", "ip", "remote_addr") {
		return false
	}
	if q.DateFrom != nil || q.DateTo != nil {
		ts, ok := RecordTime(row)
		if ok {
			if q.DateFrom != nil && ts.Before(*q.DateFrom) {
				return false
			}
			if q.DateTo != nil && ts.After(*q.DateTo) {
				return false
			}
		}
	}
	return true
}

func fieldEquals(row map[string]any, want string, fields ...string) bool {
	for _, field := range fields {
		raw, ok := row[field]
		if !ok || raw == nil {
			continue
		}
		if fmt.Sprintf("%v", raw) == want {
			return true
		}
	}
	return false
}

// Paginate slices a combined result set after all candidate archives have
// been merged. Offset and limit arrive straight from client input, so
// negative values are treated as unset rather than trusted.
func Paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
