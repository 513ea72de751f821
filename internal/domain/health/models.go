package health

import "time"

type Config struct {
	CorruptionScanEnabled bool
	StorageScanEnabled    bool
	MissingScanEnabled    bool
	FailureScanEnabled    bool
	AgeScanEnabled        bool
	RetentionScanEnabled  bool

	CorruptionScanLimit int
	DiskUsageThreshold  float64
	MaxFailedArchives   int
	RetentionYears      int
	RetentionOverrides  map[string]int
}

func DefaultConfig() Config {
	return Config{
		CorruptionScanEnabled: true,
		StorageScanEnabled:    true,
		MissingScanEnabled:    true,
		FailureScanEnabled:    true,
		AgeScanEnabled:        true,
		RetentionScanEnabled:  true,
		CorruptionScanLimit:   10,
		DiskUsageThreshold:    85,
		MaxFailedArchives:     5,
		RetentionYears:        7,
	}
}

// Snapshot is everything one health pass observed; recommendations are
// derived from it deterministically.
type Snapshot struct {
	CorruptedArchives []string
	MissingArchives   []string
	FailedCount       int64
	DiskUsedPercent   float64
	DiskTotalBytes    uint64
	DiskFreeBytes     uint64
	ArchiveBytes      int64
	ArchiveDiskShare  float64
	AgeDistribution   map[string]int64
	StaleByTable      map[string]int64
}

type CheckResult struct {
	Healthy         bool      `json:"healthy"`
	Issues          []string  `json:"issues"`
	Warnings        []string  `json:"warnings"`
	Recommendations []string  `json:"recommendations"`
	CheckedAt       time.Time `json:"checkedAt"`
}

type DetailedReport struct {
	CheckResult
	DiskUsedPercent  float64          `json:"diskUsedPercent"`
	DiskTotalBytes   uint64           `json:"diskTotalBytes"`
	DiskFreeBytes    uint64           `json:"diskFreeBytes"`
	ArchiveBytes     int64            `json:"archiveBytes"`
	ArchiveDiskShare float64          `json:"archiveDiskShare"`
	AgeDistribution  map[string]int64 `json:"ageDistribution"`
	StaleByTable     map[string]int64 `json:"staleByTable"`
	FailedArchives   int64            `json:"failedArchives"`
}
