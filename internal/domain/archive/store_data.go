package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

func (s *Store) Register(ctx context.Context, record Record) error {
	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
    INSERT INTO archive_records
      (uuid, table_name, archive_date, period_start, period_end, record_count,
       file_path, file_size, checksum_sha256, metadata, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
  `, record.UUID, record.TableName, record.ArchiveDate, record.PeriodStart, record.PeriodEnd,
		record.RecordCount, record.FilePath, record.FileSize, record.Checksum, metadata, record.Status)
	return err
}

func (s *Store) Get(ctx context.Context, uuid string) (*Record, error) {
	row := s.Pool.QueryRow(ctx, `
    SELECT uuid, table_name, archive_date, period_start, period_end, record_count,
           file_path, file_size, checksum_sha256, metadata, status, created_at
    FROM archive_records
    WHERE uuid = $1
  `, uuid)
	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrArchiveNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Store) UpdateStatus(ctx context.Context, uuid, status string) error {
	tag, err := s.Pool.Exec(ctx, `
    UPDATE archive_records SET status = $1, updated_at = now()
    WHERE uuid = $2
  `, status, uuid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrArchiveNotFound
	}
	return nil
}

// Delete removes the registry row; index rows go with it via FK cascade.
func (s *Store) Delete(ctx context.Context, uuid string) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM archive_records WHERE uuid = $1`, uuid)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) FindCandidates(ctx context.Context, query SearchQuery) ([]Record, error) {
	sql := `
    SELECT uuid, table_name, archive_date, period_start, period_end, record_count,
           file_path, file_size, checksum_sha256, metadata, status, created_at
    FROM archive_records
    WHERE status <> 'deleted'
  `
	args := []any{}
	if len(query.Tables) > 0 {
		args = append(args, query.Tables)
		sql += " AND table_name = ANY($1)"
	}
	if query.DateFrom != nil {
		args = append(args, *query.DateFrom)
		sql += fmt.Sprintf(" AND (period_end IS NULL OR period_end >= $%d)", len(args))
	}
	if query.DateTo != nil {
		args = append(args, *query.DateTo)
		sql += fmt.Sprintf(" AND (period_start IS NULL OR period_start <= $%d)", len(args))
	}
	sql += " ORDER BY period_start ASC NULLS FIRST"

	return s.queryRecords(ctx, sql, args...)
}

func (s *Store) ListByTable(ctx context.Context, table string) ([]Record, error) {
	return s.queryRecords(ctx, `
    SELECT uuid, table_name, archive_date, period_start, period_end, record_count,
           file_path, file_size, checksum_sha256, metadata, status, created_at
    FROM archive_records
    WHERE table_name = $1
    ORDER BY created_at DESC
  `, table)
}

func (s *Store) ListActive(ctx context.Context) ([]Record, error) {
	return s.queryRecords(ctx, `
    SELECT uuid, table_name, archive_date, period_start, period_end, record_count,
           file_path, file_size, checksum_sha256, metadata, status, created_at
    FROM archive_records
    WHERE status <> 'deleted'
    ORDER BY created_at DESC
  `)
}

func (s *Store) RecentRecords(ctx context.Context, limit int) ([]Record, error) {
	return s.queryRecords(ctx, `
    SELECT uuid, table_name, archive_date, period_start, period_end, record_count,
           file_path, file_size, checksum_sha256, metadata, status, created_at
    FROM archive_records
    WHERE status <> 'deleted'
    ORDER BY created_at DESC
    LIMIT $1
  `, limit)
}

func (s *Store) GetTableStats(ctx context.Context, table string) (*TableStats, error) {
	var stats TableStats
	err := s.Pool.QueryRow(ctx, `
    SELECT table_name, current_row_count, current_size_bytes, last_archive_date,
           next_archive_date, archive_threshold_rows, archive_threshold_days
    FROM table_archive_stats
    WHERE table_name = $1
  `, table).Scan(&stats.TableName, &stats.CurrentRowCount, &stats.CurrentSizeBytes,
		&stats.LastArchiveDate, &stats.NextArchiveDate, &stats.ArchiveThresholdRows, &stats.ArchiveThresholdDays)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *Store) ListTableStats(ctx context.Context) ([]TableStats, error) {
	rows, err := s.Pool.Query(ctx, `
    SELECT table_name, current_row_count, current_size_bytes, last_archive_date,
           next_archive_date, archive_threshold_rows, archive_threshold_days
    FROM table_archive_stats
    ORDER BY table_name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []TableStats
	for rows.Next() {
		var stats TableStats
		if err := rows.Scan(&stats.TableName, &stats.CurrentRowCount, &stats.CurrentSizeBytes,
			&stats.LastArchiveDate, &stats.NextArchiveDate, &stats.ArchiveThresholdRows, &stats.ArchiveThresholdDays); err != nil {
			return nil, err
		}
		all = append(all, stats)
	}
	return all, rows.Err()
}

func (s *Store) UpsertTableStats(ctx context.Context, stats TableStats) error {
	_, err := s.Pool.Exec(ctx, `
    INSERT INTO table_archive_stats
      (table_name, current_row_count, current_size_bytes, archive_threshold_rows, archive_threshold_days, updated_at)
    VALUES ($1,$2,$3,$4,$5,now())
    ON CONFLICT (table_name) DO UPDATE SET
      current_row_count = EXCLUDED.current_row_count,
      current_size_bytes = EXCLUDED.current_size_bytes,
      archive_threshold_rows = EXCLUDED.archive_threshold_rows,
      archive_threshold_days = EXCLUDED.archive_threshold_days,
      updated_at = now()
  `, stats.TableName, stats.CurrentRowCount, stats.CurrentSizeBytes,
		stats.ArchiveThresholdRows, stats.ArchiveThresholdDays)
	return err
}

func (s *Store) SetLastArchiveDate(ctx context.Context, table string, date time.Time) error {
	_, err := s.Pool.Exec(ctx, `
    UPDATE table_archive_stats
    SET last_archive_date = $1, next_archive_date = $1 + (archive_threshold_days || ' days')::interval, updated_at = now()
    WHERE table_name = $2
  `, date, table)
	return err
}

func (s *Store) Summary(ctx context.Context) (*Summary, error) {
	summary := &Summary{ByStatus: map[string]int64{}}
	err := s.Pool.QueryRow(ctx, `
    SELECT count(*), COALESCE(SUM(record_count), 0), COALESCE(SUM(file_size), 0),
           MIN(created_at), MAX(created_at)
    FROM archive_records
  `).Scan(&summary.TotalArchives, &summary.TotalRecords, &summary.TotalSizeBytes,
		&summary.OldestArchive, &summary.NewestArchive)
	if err != nil {
		return nil, err
	}

	rows, err := s.Pool.Query(ctx, `SELECT status, count(*) FROM archive_records GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		summary.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM table_archive_stats`).Scan(&summary.TablesTracked); err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *Store) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM archive_records WHERE status = $1`, status).Scan(&count)
	return count, err
}

func (s *Store) CountOlderThan(ctx context.Context, table string, cutoff time.Time) (int64, error) {
	var count int64
	err := s.Pool.QueryRow(ctx, `
    SELECT count(*) FROM archive_records
    WHERE table_name = $1 AND status <> 'deleted' AND created_at < $2
  `, table, cutoff).Scan(&count)
	return count, err
}

// AgeDistribution buckets non-deleted archives by age so the health checker
// can spot archiving that silently stopped.
func (s *Store) AgeDistribution(ctx context.Context, now time.Time) (map[string]int64, error) {
	dist := map[string]int64{}
	buckets := []struct {
		name string
		days int
	}{
		{"last7Days", 7},
		{"last30Days", 30},
		{"last90Days", 90},
		{"last365Days", 365},
	}
	for _, bucket := range buckets {
		var count int64
		err := s.Pool.QueryRow(ctx, `
      SELECT count(*) FROM archive_records
      WHERE status <> 'deleted' AND created_at >= $1
    `, now.AddDate(0, 0, -bucket.days)).Scan(&count)
		if err != nil {
			return nil, err
		}
		dist[bucket.name] = count
	}
	var total int64
	if err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM archive_records WHERE status <> 'deleted'`).Scan(&total); err != nil {
		return nil, err
	}
	dist["total"] = total
	return dist, nil
}

func (s *Store) ActiveSizeSum(ctx context.Context) (int64, error) {
	var sum int64
	err := s.Pool.QueryRow(ctx, `
    SELECT COALESCE(SUM(file_size), 0) FROM archive_records WHERE status <> 'deleted'
  `).Scan(&sum)
	return sum, err
}

func (s *Store) queryRecords(ctx context.Context, sql string, args ...any) ([]Record, error) {
	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func scanRecord(row pgx.Row) (*Record, error) {
	var record Record
	var metadata []byte
	if err := row.Scan(&record.UUID, &record.TableName, &record.ArchiveDate, &record.PeriodStart,
		&record.PeriodEnd, &record.RecordCount, &record.FilePath, &record.FileSize,
		&record.Checksum, &metadata, &record.Status, &record.CreatedAt); err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &record.Metadata); err != nil {
			return nil, err
		}
	}
	return &record, nil
}
