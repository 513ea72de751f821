package archive

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SourceStore operates on the live tables the service archives from. It is
// deliberately table-name driven: the tables it touches are operator
// configuration, not compile-time models.
type SourceStore struct {
	Pool *pgxpool.Pool
}

func NewSourceStore(pool *pgxpool.Pool) *SourceStore {
	return &SourceStore{Pool: pool}
}

// DeleteOlderThan removes exactly the rows the exporter selected: same
// column, same strict inequality.
func (s *SourceStore) DeleteOlderThan(ctx context.Context, table string, cutoff time.Time) (int64, error) {
	ident := pgx.Identifier{table}.Sanitize()
	tag, err := s.Pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s < $1", ident, TimestampColumn), cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *SourceStore) CountRows(ctx context.Context, table string) (int64, error) {
	ident := pgx.Identifier{table}.Sanitize()
	var count int64
	err := s.Pool.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", ident)).Scan(&count)
	return count, err
}

func (s *SourceStore) TableSizeBytes(ctx context.Context, table string) (int64, error) {
	var size int64
	err := s.Pool.QueryRow(ctx, "SELECT pg_total_relation_size($1::regclass)", pgx.Identifier{table}.Sanitize()).Scan(&size)
	return size, err
}

// CreateTable materializes a restore target from the archive's embedded
// schema snapshot. information_schema data types are valid DDL type names.
func (s *SourceStore) CreateTable(ctx context.Context, table string, columns map[string]string) error {
	if len(columns) == 0 {
		return fmt.Errorf("archive metadata carries no schema for table %s", table)
	}
	names := sortedKeys(columns)
	defs := make([]string, 0, len(names))
	for _, name := range names {
		defs = append(defs, fmt.Sprintf("%s %s", pgx.Identifier{name}.Sanitize(), columns[name]))
	}
	ident := pgx.Identifier{table}.Sanitize()
	_, err := s.Pool.Exec(ctx, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", ident, strings.Join(defs, ", ")))
	return err
}

const restoreBatchSize = 500

// InsertRows restores archived rows in batched INSERTs inside one
// transaction. Policies: skip (ON CONFLICT DO NOTHING), overwrite (upsert on
// id), fail (plain insert, first conflict aborts the transaction).
func (s *SourceStore) InsertRows(ctx context.Context, table string, rows []map[string]any, conflictPolicy string) (int64, int64, error) {
	if len(rows) == 0 {
		return 0, 0, nil
	}
	switch conflictPolicy {
	case ConflictSkip, ConflictOverwrite, ConflictFail:
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrBadConflictPolicy, conflictPolicy)
	}

	columns := sortedKeys(rows[0])
	if conflictPolicy == ConflictOverwrite {
		if _, ok := rows[0]["id"]; !ok {
			return 0, 0, fmt.Errorf("overwrite policy requires an id column in archived rows")
		}
	}

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, 0, err
	}

	var inserted int64
	for start := 0; start < len(rows); start += restoreBatchSize {
		end := start + restoreBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		tag, err := s.insertBatch(ctx, tx, table, columns, rows[start:end], conflictPolicy)
		if err != nil {
			_ = tx.Rollback(ctx)
			return 0, 0, err
		}
		inserted += tag
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, err
	}
	return inserted, int64(len(rows)) - inserted, nil
}

func (s *SourceStore) insertBatch(ctx context.Context, tx pgx.Tx, table string, columns []string, rows []map[string]any, conflictPolicy string) (int64, error) {
	idents := make([]string, len(columns))
	for i, column := range columns {
		idents[i] = pgx.Identifier{column}.Sanitize()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ",
		pgx.Identifier{table}.Sanitize(), strings.Join(idents, ", "))

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(")
		for j, column := range columns {
			if j > 0 {
				sb.WriteString(",")
			}
			args = append(args, row[column])
			fmt.Fprintf(&sb, "$%d", len(args))
		}
		sb.WriteString(")")
	}

	switch conflictPolicy {
	case ConflictSkip:
		sb.WriteString(" ON CONFLICT DO NOTHING")
	case ConflictOverwrite:
		sb.WriteString(" ON CONFLICT (id) DO UPDATE SET ")
		assignments := make([]string, 0, len(columns))
		for i, column := range columns {
			if column == "id" {
				continue
			}
			assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", idents[i], idents[i]))
		}
		sb.WriteString(strings.Join(assignments, ", "))
	}

	tag, err := tx.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
