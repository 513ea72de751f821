package archive

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"logvault/internal/db"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool, "../../../migrations"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStore(pool)
}

func testRecord(table string) Record {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return Record{
		UUID:        uuid.NewString(),
		TableName:   table,
		ArchiveDate: time.Now().UTC(),
		PeriodStart: &start,
		PeriodEnd:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		RecordCount: 3,
		FilePath:    "/tmp/" + table + ".json.gz",
		FileSize:    512,
		Checksum:    "deadbeef",
		Metadata:    ExportMetadata{TableName: table, Compression: "gzip"},
		Status:      StatusPending,
	}
}

func TestStoreRegistryLifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	table := "it_" + uuid.NewString()[:8]

	record := testRecord(table)
	if err := store.Register(ctx, record); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := store.Get(ctx, record.UUID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.TableName != table || got.RecordCount != 3 || got.Checksum != "deadbeef" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Metadata.Compression != "gzip" {
		t.Fatalf("metadata not persisted: %+v", got.Metadata)
	}

	if err := store.UpdateStatus(ctx, record.UUID, StatusVerified); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, err = store.Get(ctx, record.UUID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusVerified {
		t.Fatalf("expected verified status, got %q", got.Status)
	}

	entries := []IndexEntry{{
		ArchiveUUID:     record.UUID,
		EntityType:      EntityUser,
		EntityValue:     "u1",
		RecordCount:     3,
		FirstOccurrence: time.Now().UTC().Add(-time.Hour),
		LastOccurrence:  time.Now().UTC(),
	}}
	if err := store.InsertIndexBatch(ctx, entries); err != nil {
		t.Fatalf("InsertIndexBatch: %v", err)
	}

	existed, err := store.Delete(ctx, record.UUID)
	if err != nil || !existed {
		t.Fatalf("Delete: existed=%v err=%v", existed, err)
	}

	var orphans int64
	err = store.Pool.QueryRow(ctx,
		`SELECT count(*) FROM archive_search_index WHERE archive_uuid = $1`, record.UUID).Scan(&orphans)
	if err != nil {
		t.Fatalf("index count: %v", err)
	}
	if orphans != 0 {
		t.Fatalf("index rows must cascade with the record, found %d", orphans)
	}

	if _, err := store.Get(ctx, record.UUID); err != ErrArchiveNotFound {
		t.Fatalf("expected ErrArchiveNotFound, got %v", err)
	}
	if err := store.UpdateStatus(ctx, record.UUID, StatusDeleted); err != ErrArchiveNotFound {
		t.Fatalf("expected ErrArchiveNotFound on status update, got %v", err)
	}
}

func TestStoreIndexBatchSpansStatements(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	table := "it_" + uuid.NewString()[:8]

	record := testRecord(table)
	if err := store.Register(ctx, record); err != nil {
		t.Fatalf("Register: %v", err)
	}
	t.Cleanup(func() { _, _ = store.Delete(ctx, record.UUID) })

	// More entries than one INSERT statement carries, so the batch must
	// split across statements while staying one transaction.
	total := indexInsertBatchSize + 2
	entries := manyIndexEntries(total)
	for i := range entries {
		entries[i].ArchiveUUID = record.UUID
	}
	if err := store.InsertIndexBatch(ctx, entries); err != nil {
		t.Fatalf("InsertIndexBatch: %v", err)
	}

	var count int64
	err := store.Pool.QueryRow(ctx,
		`SELECT count(*) FROM archive_search_index WHERE archive_uuid = $1`, record.UUID).Scan(&count)
	if err != nil {
		t.Fatalf("index count: %v", err)
	}
	if count != int64(total) {
		t.Fatalf("expected %d index rows, got %d", total, count)
	}
}

func TestStoreFindCandidates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	table := "it_" + uuid.NewString()[:8]

	record := testRecord(table)
	if err := store.Register(ctx, record); err != nil {
		t.Fatalf("Register: %v", err)
	}
	t.Cleanup(func() { _, _ = store.Delete(ctx, record.UUID) })

	found, err := store.FindCandidates(ctx, SearchQuery{Tables: []string{table}})
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	if len(found) != 1 || found[0].UUID != record.UUID {
		t.Fatalf("expected the registered archive, got %+v", found)
	}

	inside := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	found, err = store.FindCandidates(ctx, SearchQuery{Tables: []string{table}, DateFrom: &inside, DateTo: &inside})
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("date inside the period must match, got %d", len(found))
	}

	after := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	found, err = store.FindCandidates(ctx, SearchQuery{Tables: []string{table}, DateFrom: &after})
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("date after the period must not match, got %d", len(found))
	}
}

func TestStoreTableStats(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	table := "it_" + uuid.NewString()[:8]

	stats, err := store.GetTableStats(ctx, table)
	if err != nil {
		t.Fatalf("GetTableStats: %v", err)
	}
	if stats != nil {
		t.Fatalf("untracked table must return nil, got %+v", stats)
	}

	if err := store.UpsertTableStats(ctx, TableStats{
		TableName:            table,
		CurrentRowCount:      100,
		CurrentSizeBytes:     2048,
		ArchiveThresholdRows: 1000,
		ArchiveThresholdDays: 30,
	}); err != nil {
		t.Fatalf("UpsertTableStats: %v", err)
	}
	t.Cleanup(func() {
		_, _ = store.Pool.Exec(ctx, `DELETE FROM table_archive_stats WHERE table_name = $1`, table)
	})

	// last_archive_date is a DATE column, so compare at day granularity.
	archived := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if err := store.SetLastArchiveDate(ctx, table, archived); err != nil {
		t.Fatalf("SetLastArchiveDate: %v", err)
	}

	stats, err = store.GetTableStats(ctx, table)
	if err != nil {
		t.Fatalf("GetTableStats: %v", err)
	}
	if stats == nil || stats.CurrentRowCount != 100 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.LastArchiveDate == nil || !stats.LastArchiveDate.Equal(archived) {
		t.Fatalf("last archive date not set: %+v", stats.LastArchiveDate)
	}
	if stats.NextArchiveDate == nil || !stats.NextArchiveDate.After(archived) {
		t.Fatalf("next archive date must be derived from the threshold: %+v", stats.NextArchiveDate)
	}
}
