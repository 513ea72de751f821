package archive

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// indexInsertBatchSize bounds one multi-row INSERT. Six bind parameters
// per entry, and Postgres' extended protocol caps a statement at 65535
// parameters, so 5000 entries (30000 parameters) leaves ample headroom
// even for archives with very high entity cardinality.
const indexInsertBatchSize = 5000

// InsertIndexBatch writes all index rows for one archive in chunked
// multi-row INSERTs inside a single transaction. Chunked, not per-row, so
// indexing a large archive stays linear; one transaction, so the batch is
// still all-or-nothing.
func (s *Store) InsertIndexBatch(ctx context.Context, entries []IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	for start := 0; start < len(entries); start += indexInsertBatchSize {
		end := start + indexInsertBatchSize
		if end > len(entries) {
			end = len(entries)
		}
		sql, args := buildIndexInsert(entries[start:end])
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
	}
	return tx.Commit(ctx)
}

func buildIndexInsert(entries []IndexEntry) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`
    INSERT INTO archive_search_index
      (archive_uuid, entity_type, entity_value, record_count, first_occurrence, last_occurrence)
    VALUES `)
	args := make([]any, 0, len(entries)*6)
	for i, entry := range entries {
		if i > 0 {
			sb.WriteString(",")
		}
		base := i * 6
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4, base+5, base+6)
		args = append(args, entry.ArchiveUUID, entry.EntityType, entry.EntityValue,
			entry.RecordCount, entry.FirstOccurrence, entry.LastOccurrence)
	}
	return sb.String(), args
}
