package archive

import (
	"context"
	"fmt"
)

// RestoreFromArchive unpackages an archive and batch-inserts its rows into
// the target table (default: the original table) under the requested
// conflict policy. Optionally creates the target from the archive's embedded
// schema. The archive record's status is untouched: a restored archive is
// still an archive.
func (s *Service) RestoreFromArchive(ctx context.Context, archiveUUID string, opts RestoreOptions) RestoreResult {
	result := RestoreResult{UUID: archiveUUID}
	s.Metrics.RestoreRun()

	record, err := s.Store.Get(ctx, archiveUUID)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	target := opts.TargetTable
	if target == "" {
		target = record.TableName
	}
	result.TargetTable = target

	policy := opts.ConflictPolicy
	if policy == "" {
		policy = ConflictSkip
	}
	switch policy {
	case ConflictSkip, ConflictOverwrite, ConflictFail:
	default:
		result.Error = fmt.Sprintf("%v: %q", ErrBadConflictPolicy, policy)
		return result
	}

	export, err := s.Packager.Unpackage(*record)
	if err != nil {
		result.Error = fmt.Sprintf("unpackage failed: %v", err)
		return result
	}

	exists, err := s.Exporter.TableExists(ctx, target)
	if err != nil {
		result.Error = fmt.Sprintf("schema check failed: %v", err)
		return result
	}
	if !exists {
		if !opts.CreateTable {
			result.Error = fmt.Sprintf("%v: %s (set createTable to build it from the archive schema)", ErrTableNotFound, target)
			return result
		}
		if err := s.Source.CreateTable(ctx, target, export.Metadata.Columns); err != nil {
			result.Error = fmt.Sprintf("target table create failed: %v", err)
			return result
		}
	}

	rows := Paginate(export.Data, opts.Limit, opts.Offset)
	inserted, skipped, err := s.Source.InsertRows(ctx, target, rows, policy)
	if err != nil {
		result.Error = fmt.Sprintf("restore insert failed: %v", err)
		return result
	}

	result.Success = true
	result.RestoredRows = inserted
	result.SkippedRows = skipped
	return result
}
