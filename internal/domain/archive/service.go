package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"logvault/internal/platform/locks"
	"logvault/internal/platform/metrics"
)

// ExporterAPI and PackagerAPI are the orchestrator's seams over the export
// and packaging stages.
type ExporterAPI interface {
	TableExists(ctx context.Context, table string) (bool, error)
	Export(ctx context.Context, table string, cutoff time.Time) (*ExportResult, error)
}

type PackagerAPI interface {
	Package(result *ExportResult) (*File, error)
	Unpackage(record Record) (*ExportResult, error)
	Verify(record Record) (bool, error)
	RemoveFile(record Record) error
}

type Service struct {
	Store    StoreAPI
	Source   SourceAPI
	Exporter ExporterAPI
	Packager PackagerAPI
	Locks    *locks.TableLocks
	Metrics  *metrics.Collector

	DefaultThresholdRows int64
	DefaultThresholdDays int
}

func NewService(store StoreAPI, source SourceAPI, exporter ExporterAPI, packager PackagerAPI, tableLocks *locks.TableLocks, collector *metrics.Collector) *Service {
	return &Service{
		Store:                store,
		Source:               source,
		Exporter:             exporter,
		Packager:             packager,
		Locks:                tableLocks,
		Metrics:              collector,
		DefaultThresholdRows: 1000000,
		DefaultThresholdDays: 30,
	}
}

// ArchiveTable runs the full pipeline: export, package, register, index,
// verify, delete source rows, finalize. Source deletion is gated strictly
// behind a successful verification, so a failed archive never loses data.
// A per-table advisory lock covers the whole window; a concurrent run
// against the same table fails fast instead of racing.
func (s *Service) ArchiveTable(ctx context.Context, table string, cutoff time.Time) ArchiveResult {
	result := ArchiveResult{TableName: table}

	exists, err := s.Exporter.TableExists(ctx, table)
	if err != nil {
		result.Error = fmt.Sprintf("schema check failed: %v", err)
		return result
	}
	if !exists {
		result.Error = fmt.Sprintf("%v: %s", ErrTableNotFound, table)
		return result
	}

	err = s.Locks.WithTable(table, func() error {
		result = s.runArchive(ctx, table, cutoff)
		return nil
	})
	if err != nil {
		result.Error = err.Error()
	}
	return result
}

func (s *Service) runArchive(ctx context.Context, table string, cutoff time.Time) ArchiveResult {
	result := ArchiveResult{TableName: table}
	s.Metrics.ArchiveStarted()

	export, err := s.Exporter.Export(ctx, table, cutoff)
	if err != nil {
		s.Metrics.ArchiveFailed()
		result.Error = fmt.Sprintf("export failed: %v", err)
		return result
	}
	if export.RecordCount == 0 {
		// Benign no-op: nothing registered, nothing written.
		result.Success = true
		result.Error = ErrNoRecords.Error()
		return result
	}

	archiveUUID := uuid.NewString()
	record := Record{
		UUID:        archiveUUID,
		TableName:   table,
		ArchiveDate: time.Now().UTC(),
		PeriodStart: export.Metadata.FirstRecord,
		PeriodEnd:   cutoff,
		RecordCount: export.RecordCount,
		Status:      StatusPending,
	}

	file, err := s.Packager.Package(export)
	if err != nil {
		s.Metrics.ArchiveFailed()
		result.Error = fmt.Sprintf("packaging failed: %v", err)
		return result
	}
	record.FilePath = file.Path
	record.FileSize = file.Size
	record.Checksum = file.Checksum
	record.Metadata = export.Metadata

	if err := s.Store.Register(ctx, record); err != nil {
		s.Metrics.ArchiveFailed()
		s.cleanupFailedArchive(ctx, record, false)
		result.Error = fmt.Sprintf("registry insert failed: %v", err)
		return result
	}

	entries := BuildIndex(archiveUUID, export.Data)
	if err := s.Store.InsertIndexBatch(ctx, entries); err != nil {
		s.Metrics.ArchiveFailed()
		s.cleanupFailedArchive(ctx, record, true)
		result.Error = fmt.Sprintf("index insert failed: %v", err)
		return result
	}

	ok, err := s.Packager.Verify(record)
	if err != nil || !ok {
		s.Metrics.ArchiveFailed()
		s.Metrics.VerifyFailed()
		s.cleanupFailedArchive(ctx, record, true)
		if err == nil {
			err = ErrCorrupted
		}
		result.Error = fmt.Sprintf("verification failed, source rows untouched: %v", err)
		return result
	}

	deleted, err := s.Source.DeleteOlderThan(ctx, table, cutoff)
	if err != nil {
		// The archive itself is intact and verified; keep it and surface the
		// failure rather than rolling back verified data.
		s.Metrics.ArchiveFailed()
		result.UUID = archiveUUID
		result.Error = fmt.Sprintf("source delete failed, archive %s retained: %v", archiveUUID, err)
		return result
	}

	if err := s.Store.UpdateStatus(ctx, archiveUUID, StatusCompleted); err != nil {
		slog.Warn("archive finalize status update failed", "uuid", archiveUUID, "err", err)
	}
	if err := s.Store.SetLastArchiveDate(ctx, table, record.ArchiveDate); err != nil {
		slog.Warn("last archive date update failed", "table", table, "err", err)
	}

	s.Metrics.ArchiveCompleted(export.RecordCount, file.Size)
	return ArchiveResult{
		Success:     true,
		UUID:        archiveUUID,
		TableName:   table,
		RecordCount: export.RecordCount,
		FilePath:    file.Path,
		FileSize:    file.Size,
		DeletedRows: deleted,
	}
}

// cleanupFailedArchive removes whatever a failed run left behind: the
// physical file, and the registry row when one was created (index rows
// cascade with it).
func (s *Service) cleanupFailedArchive(ctx context.Context, record Record, registered bool) {
	if err := s.Packager.RemoveFile(record); err != nil {
		slog.Warn("cleanup: file remove failed", "uuid", record.UUID, "path", record.FilePath, "err", err)
	}
	if registered {
		if _, err := s.Store.Delete(ctx, record.UUID); err != nil {
			slog.Warn("cleanup: registry delete failed", "uuid", record.UUID, "err", err)
		}
	}
}

// VerifyArchive fails closed: unknown record, missing file, and checksum
// mismatch all return false and mark the record, success marks it verified.
func (s *Service) VerifyArchive(ctx context.Context, archiveUUID string) (bool, error) {
	record, err := s.Store.Get(ctx, archiveUUID)
	if err != nil {
		return false, err
	}

	ok, err := s.Packager.Verify(*record)
	if err != nil {
		status := StatusCorrupted
		if errors.Is(err, ErrMissingFile) {
			status = StatusMissing
		}
		s.Metrics.VerifyFailed()
		if updateErr := s.Store.UpdateStatus(ctx, archiveUUID, status); updateErr != nil {
			slog.Warn("verify status update failed", "uuid", archiveUUID, "err", updateErr)
		}
		return false, nil
	}
	if !ok {
		s.Metrics.VerifyFailed()
		if updateErr := s.Store.UpdateStatus(ctx, archiveUUID, StatusCorrupted); updateErr != nil {
			slog.Warn("verify status update failed", "uuid", archiveUUID, "err", updateErr)
		}
		return false, nil
	}

	if err := s.Store.UpdateStatus(ctx, archiveUUID, StatusVerified); err != nil {
		slog.Warn("verify status update failed", "uuid", archiveUUID, "err", err)
	}
	return true, nil
}

// DeleteArchive removes the file best-effort, then the registry row; index
// rows cascade. Returns whether a registry row existed.
func (s *Service) DeleteArchive(ctx context.Context, archiveUUID string) (bool, error) {
	record, err := s.Store.Get(ctx, archiveUUID)
	if err != nil {
		if errors.Is(err, ErrArchiveNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := s.Packager.RemoveFile(*record); err != nil {
		slog.Warn("archive file remove failed", "uuid", archiveUUID, "err", err)
	}
	return s.Store.Delete(ctx, archiveUUID)
}
