package archive

import (
	"context"
	"time"
)

// StoreAPI is the registry persistence seam; the service and health checker
// depend on it so tests can swap in fakes.
type StoreAPI interface {
	Register(ctx context.Context, record Record) error
	Get(ctx context.Context, uuid string) (*Record, error)
	UpdateStatus(ctx context.Context, uuid, status string) error
	Delete(ctx context.Context, uuid string) (bool, error)
	FindCandidates(ctx context.Context, query SearchQuery) ([]Record, error)
	ListByTable(ctx context.Context, table string) ([]Record, error)
	ListActive(ctx context.Context) ([]Record, error)
	RecentRecords(ctx context.Context, limit int) ([]Record, error)
	InsertIndexBatch(ctx context.Context, entries []IndexEntry) error
	GetTableStats(ctx context.Context, table string) (*TableStats, error)
	ListTableStats(ctx context.Context) ([]TableStats, error)
	UpsertTableStats(ctx context.Context, stats TableStats) error
	SetLastArchiveDate(ctx context.Context, table string, date time.Time) error
	Summary(ctx context.Context) (*Summary, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountOlderThan(ctx context.Context, table string, cutoff time.Time) (int64, error)
	AgeDistribution(ctx context.Context, now time.Time) (map[string]int64, error)
	ActiveSizeSum(ctx context.Context) (int64, error)
}

// SourceAPI covers the live tables the service archives from and restores
// into.
type SourceAPI interface {
	DeleteOlderThan(ctx context.Context, table string, cutoff time.Time) (int64, error)
	CountRows(ctx context.Context, table string) (int64, error)
	TableSizeBytes(ctx context.Context, table string) (int64, error)
	CreateTable(ctx context.Context, table string, columns map[string]string) error
	InsertRows(ctx context.Context, table string, rows []map[string]any, conflictPolicy string) (inserted int64, skipped int64, err error)
}
