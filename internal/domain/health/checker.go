package health

import (
	"context"
	"log/slog"
	"time"

	"logvault/internal/domain/archive"
	"logvault/internal/platform/checksum"
	"logvault/internal/platform/storage"
)

// Checker audits registry/filesystem consistency independently of the write
// path. It is read-mostly: the only writes are status flips on archives it
// finds corrupted or missing. It can race an in-flight archive run in
// theory; findings on very fresh archives are re-verified before flipping
// status.
type Checker struct {
	Store   archive.StoreAPI
	Storage *storage.Manager
	Config  Config
}

func NewChecker(store archive.StoreAPI, st *storage.Manager, cfg Config) *Checker {
	return &Checker{Store: store, Storage: st, Config: cfg}
}

func (c *Checker) PerformHealthCheck(ctx context.Context) (*CheckResult, error) {
	snapshot, err := c.observe(ctx)
	if err != nil {
		return nil, err
	}
	result := Evaluate(*snapshot, c.Config)
	result.CheckedAt = time.Now().UTC()
	return &result, nil
}

func (c *Checker) GetDetailedHealthReport(ctx context.Context) (*DetailedReport, error) {
	snapshot, err := c.observe(ctx)
	if err != nil {
		return nil, err
	}
	result := Evaluate(*snapshot, c.Config)
	result.CheckedAt = time.Now().UTC()
	return &DetailedReport{
		CheckResult:      result,
		DiskUsedPercent:  snapshot.DiskUsedPercent,
		DiskTotalBytes:   snapshot.DiskTotalBytes,
		DiskFreeBytes:    snapshot.DiskFreeBytes,
		ArchiveBytes:     snapshot.ArchiveBytes,
		ArchiveDiskShare: snapshot.ArchiveDiskShare,
		AgeDistribution:  snapshot.AgeDistribution,
		StaleByTable:     snapshot.StaleByTable,
		FailedArchives:   snapshot.FailedCount,
	}, nil
}

func (c *Checker) observe(ctx context.Context) (*Snapshot, error) {
	snapshot := &Snapshot{}
	now := time.Now().UTC()

	if c.Config.CorruptionScanEnabled {
		corrupted, err := c.scanCorruption(ctx)
		if err != nil {
			return nil, err
		}
		snapshot.CorruptedArchives = corrupted
	}

	if c.Config.MissingScanEnabled {
		missing, err := c.scanMissing(ctx)
		if err != nil {
			return nil, err
		}
		snapshot.MissingArchives = missing
	}

	if c.Config.StorageScanEnabled {
		usage, err := c.Storage.Usage()
		if err != nil {
			return nil, err
		}
		snapshot.DiskUsedPercent = usage.UsedPercent
		snapshot.DiskTotalBytes = usage.TotalBytes
		snapshot.DiskFreeBytes = usage.FreeBytes

		archiveBytes, err := c.Store.ActiveSizeSum(ctx)
		if err != nil {
			return nil, err
		}
		snapshot.ArchiveBytes = archiveBytes
		if usage.TotalBytes > 0 {
			snapshot.ArchiveDiskShare = float64(archiveBytes) / float64(usage.TotalBytes)
		}
	}

	if c.Config.FailureScanEnabled {
		failed, err := c.Store.CountByStatus(ctx, archive.StatusFailed)
		if err != nil {
			return nil, err
		}
		snapshot.FailedCount = failed
	}

	if c.Config.AgeScanEnabled {
		dist, err := c.Store.AgeDistribution(ctx, now)
		if err != nil {
			return nil, err
		}
		snapshot.AgeDistribution = dist
	}

	if c.Config.RetentionScanEnabled {
		stale, err := c.scanRetention(ctx, now)
		if err != nil {
			return nil, err
		}
		snapshot.StaleByTable = stale
	}

	return snapshot, nil
}

// scanCorruption recomputes checksums for the most recent archives. A
// mismatch is re-read once before the record is flipped, to tolerate a
// transient read race with an in-flight write.
func (c *Checker) scanCorruption(ctx context.Context) ([]string, error) {
	records, err := c.Store.RecentRecords(ctx, c.Config.CorruptionScanLimit)
	if err != nil {
		return nil, err
	}

	var corrupted []string
	for _, record := range records {
		if record.Checksum == "" {
			continue
		}
		if !c.Storage.Exists(record.FilePath) {
			// The missing-file scan owns this case.
			continue
		}
		ok, err := checksum.VerifyFile(record.FilePath, record.Checksum)
		if err != nil {
			slog.Warn("corruption scan read failed", "uuid", record.UUID, "err", err)
			continue
		}
		if ok {
			continue
		}
		ok, err = checksum.VerifyFile(record.FilePath, record.Checksum)
		if err == nil && ok {
			continue
		}
		corrupted = append(corrupted, record.UUID)
		if err := c.Store.UpdateStatus(ctx, record.UUID, archive.StatusCorrupted); err != nil {
			slog.Warn("corruption scan status update failed", "uuid", record.UUID, "err", err)
		}
	}
	return corrupted, nil
}

func (c *Checker) scanMissing(ctx context.Context) ([]string, error) {
	records, err := c.Store.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, record := range records {
		if c.Storage.Exists(record.FilePath) {
			continue
		}
		missing = append(missing, record.UUID)
		if err := c.Store.UpdateStatus(ctx, record.UUID, archive.StatusMissing); err != nil {
			slog.Warn("missing scan status update failed", "uuid", record.UUID, "err", err)
		}
	}
	return missing, nil
}

func (c *Checker) scanRetention(ctx context.Context, now time.Time) (map[string]int64, error) {
	allStats, err := c.Store.ListTableStats(ctx)
	if err != nil {
		return nil, err
	}

	stale := map[string]int64{}
	for _, stats := range allStats {
		years := RetentionYears(c.Config, stats.TableName)
		if years <= 0 {
			continue
		}
		cutoff := now.AddDate(-years, 0, 0)
		count, err := c.Store.CountOlderThan(ctx, stats.TableName, cutoff)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			stale[stats.TableName] = count
		}
	}
	return stale, nil
}
