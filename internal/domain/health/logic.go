package health

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Evaluate turns one observation snapshot into issues, warnings, and
// recommendations. Pure function so threshold behavior is testable without
// a registry or a filesystem. Warnings never downgrade health; only issues
// do.
func Evaluate(snapshot Snapshot, cfg Config) CheckResult {
	result := CheckResult{}

	for _, uuid := range snapshot.CorruptedArchives {
		result.Issues = append(result.Issues, fmt.Sprintf("archive %s failed checksum verification", uuid))
	}
	if len(snapshot.CorruptedArchives) > 0 {
		result.Recommendations = append(result.Recommendations,
			"re-verify corrupted archives and restore from backups if the corruption is confirmed")
	}

	for _, uuid := range snapshot.MissingArchives {
		result.Issues = append(result.Issues, fmt.Sprintf("archive %s file is missing from storage", uuid))
	}
	if len(snapshot.MissingArchives) > 0 {
		result.Recommendations = append(result.Recommendations,
			"locate or restore missing archive files, or delete their registry records")
	}

	if cfg.StorageScanEnabled && snapshot.DiskUsedPercent >= cfg.DiskUsageThreshold {
		result.Issues = append(result.Issues, fmt.Sprintf(
			"storage disk usage %.1f%% exceeds the %.1f%% threshold (%s free)",
			snapshot.DiskUsedPercent, cfg.DiskUsageThreshold, humanize.Bytes(snapshot.DiskFreeBytes)))
		result.Recommendations = append(result.Recommendations,
			"free disk space or move archives to colder storage")
	}

	if cfg.FailureScanEnabled && snapshot.FailedCount > int64(cfg.MaxFailedArchives) {
		result.Issues = append(result.Issues, fmt.Sprintf(
			"%d failed archives exceed the configured maximum of %d",
			snapshot.FailedCount, cfg.MaxFailedArchives))
		result.Recommendations = append(result.Recommendations,
			"inspect failed archive runs and clear or retry them")
	}

	if cfg.AgeScanEnabled {
		total := snapshot.AgeDistribution["total"]
		lastWeek := snapshot.AgeDistribution["last7Days"]
		if total > 0 && lastWeek == 0 {
			// A signal, not a failure: archiving may have silently stopped.
			result.Recommendations = append(result.Recommendations,
				"no archives created in the last 7 days; check that the archival scheduler is running")
		}
	}

	for table, count := range snapshot.StaleByTable {
		if count > 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"%d archives for table %s are older than the retention policy and are candidates for permanent deletion",
				count, table))
		}
	}

	result.Healthy = len(result.Issues) == 0
	return result
}

// RetentionYears resolves the policy for a table, falling back to the
// default.
func RetentionYears(cfg Config, table string) int {
	if years, ok := cfg.RetentionOverrides[table]; ok {
		return years
	}
	return cfg.RetentionYears
}
