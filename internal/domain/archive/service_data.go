package archive

import (
	"context"
	"time"
)

// GetTableStats returns the tracked snapshot for one table, nil when the
// table isn't tracked yet.
func (s *Service) GetTableStats(ctx context.Context, table string) (*TableStats, error) {
	return s.Store.GetTableStats(ctx, table)
}

// TrackTableGrowth refreshes the live row count and on-disk size for a
// table, seeding thresholds from service defaults on first sight.
func (s *Service) TrackTableGrowth(ctx context.Context, table string) (*TableStats, error) {
	exists, err := s.Exporter.TableExists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrTableNotFound
	}

	rowCount, err := s.Source.CountRows(ctx, table)
	if err != nil {
		return nil, err
	}
	sizeBytes, err := s.Source.TableSizeBytes(ctx, table)
	if err != nil {
		return nil, err
	}

	stats, err := s.Store.GetTableStats(ctx, table)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &TableStats{
			TableName:            table,
			ArchiveThresholdRows: s.DefaultThresholdRows,
			ArchiveThresholdDays: s.DefaultThresholdDays,
		}
	}
	stats.CurrentRowCount = rowCount
	stats.CurrentSizeBytes = sizeBytes

	if err := s.Store.UpsertTableStats(ctx, *stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetTablesNeedingArchival filters tracked tables through the needs-archive
// predicate.
func (s *Service) GetTablesNeedingArchival(ctx context.Context) ([]TableStats, error) {
	all, err := s.Store.ListTableStats(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	var due []TableStats
	for _, stats := range all {
		if NeedsArchive(stats, now) {
			due = append(due, stats)
		}
	}
	return due, nil
}

func (s *Service) GetArchiveSummary(ctx context.Context) (*Summary, error) {
	return s.Store.Summary(ctx)
}

func (s *Service) GetTableArchives(ctx context.Context, table string) ([]Record, error) {
	return s.Store.ListByTable(ctx, table)
}
