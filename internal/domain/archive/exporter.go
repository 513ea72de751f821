package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"logvault/internal/platform/querier"
)

// Exporter paginates a source table in fixed-size chunks ordered by the
// timestamp column and buffers everything older than the cutoff. Archival is
// a background batch job, so one in-memory slice per run is the accepted
// memory/simplicity tradeoff; chunk size is the only throttle.
type Exporter struct {
	DB        querier.Querier
	ChunkSize int
}

func NewExporter(db querier.Querier, chunkSize int) *Exporter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Exporter{DB: db, ChunkSize: chunkSize}
}

// TableExists checks the catalog instead of probing with a throwaway query.
func (e *Exporter) TableExists(ctx context.Context, table string) (bool, error) {
	var count int
	err := e.DB.QueryRow(ctx, `
    SELECT count(*)
    FROM information_schema.tables
    WHERE table_schema = current_schema() AND table_name = $1
  `, table).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// TableColumns snapshots the visible schema for the export metadata.
func (e *Exporter) TableColumns(ctx context.Context, table string) (map[string]string, error) {
	rows, err := e.DB.Query(ctx, `
    SELECT column_name, data_type
    FROM information_schema.columns
    WHERE table_schema = current_schema() AND table_name = $1
    ORDER BY ordinal_position
  `, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := map[string]string{}
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return nil, err
		}
		columns[name] = dataType
	}
	return columns, rows.Err()
}

// Export returns every row with created_at strictly before the cutoff. A
// zero-record result is a benign outcome, not an error; the caller decides
// what to do with it. Storage errors propagate unretried.
func (e *Exporter) Export(ctx context.Context, table string, cutoff time.Time) (*ExportResult, error) {
	columns, err := e.TableColumns(ctx, table)
	if err != nil {
		return nil, err
	}

	ident := pgx.Identifier{table}.Sanitize()
	query := fmt.Sprintf(`
    SELECT * FROM %s
    WHERE %s < $1
    ORDER BY %s ASC
    LIMIT $2 OFFSET $3
  `, ident, TimestampColumn, TimestampColumn)

	var data []map[string]any
	offset := 0
	for {
		page, err := e.fetchPage(ctx, query, cutoff, offset)
		if err != nil {
			return nil, err
		}
		data = append(data, page...)
		if len(page) < e.ChunkSize {
			break
		}
		offset += e.ChunkSize
	}

	result := &ExportResult{
		Data:        data,
		RecordCount: int64(len(data)),
		Metadata: ExportMetadata{
			TableName:  table,
			Columns:    columns,
			Cutoff:     cutoff,
			ExportedAt: time.Now().UTC(),
		},
	}
	if len(data) > 0 {
		if first, ok := RecordTime(data[0]); ok {
			result.Metadata.FirstRecord = &first
		}
		if last, ok := RecordTime(data[len(data)-1]); ok {
			result.Metadata.LastRecord = &last
		}
	}
	return result, nil
}

func (e *Exporter) fetchPage(ctx context.Context, query string, cutoff time.Time, offset int) ([]map[string]any, error) {
	rows, err := e.DB.Query(ctx, query, cutoff, e.ChunkSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var page []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(fields))
		for i, field := range fields {
			row[string(field.Name)] = values[i]
		}
		page = append(page, row)
	}
	return page, rows.Err()
}
