package archive

import "time"

// Record is the durable registry row for one archive operation. The file on
// disk and the search-index rows hang off it: the file is removed explicitly
// on delete, the index rows cascade.
type Record struct {
	UUID        string         `json:"uuid"`
	TableName   string         `json:"tableName"`
	ArchiveDate time.Time      `json:"archiveDate"`
	PeriodStart *time.Time     `json:"periodStart"`
	PeriodEnd   time.Time      `json:"periodEnd"`
	RecordCount int64          `json:"recordCount"`
	FilePath    string         `json:"filePath"`
	FileSize    int64          `json:"fileSize"`
	Checksum    string         `json:"checksumSha256"`
	Metadata    ExportMetadata `json:"metadata"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// ExportMetadata travels both in the registry row and inside the archive
// file itself, so a file stays self-describing even if the registry row is
// lost or disagrees.
type ExportMetadata struct {
	TableName   string            `json:"tableName"`
	Columns     map[string]string `json:"columns"`
	Cutoff      time.Time         `json:"cutoff"`
	ExportedAt  time.Time         `json:"exportedAt"`
	FirstRecord *time.Time        `json:"firstRecord,omitempty"`
	LastRecord  *time.Time        `json:"lastRecord,omitempty"`
	Compression string            `json:"compression"`
	Encrypted   bool              `json:"encrypted"`
}

// ExportResult holds one table slice in memory between export and packaging.
type ExportResult struct {
	Data        []map[string]any
	RecordCount int64
	Metadata    ExportMetadata
}

// File describes the written artifact; the checksum covers the final
// compressed+encrypted bytes, not the plaintext.
type File struct {
	Path     string
	Size     int64
	Checksum string
}

type TableStats struct {
	TableName            string     `json:"tableName"`
	CurrentRowCount      int64      `json:"currentRowCount"`
	CurrentSizeBytes     int64      `json:"currentSizeBytes"`
	LastArchiveDate      *time.Time `json:"lastArchiveDate"`
	NextArchiveDate      *time.Time `json:"nextArchiveDate"`
	ArchiveThresholdRows int64      `json:"archiveThresholdRows"`
	ArchiveThresholdDays int        `json:"archiveThresholdDays"`
}

// IndexEntry is one denormalized aggregate per (archive, entity type, value).
type IndexEntry struct {
	ArchiveUUID     string    `json:"archiveUuid"`
	EntityType      string    `json:"entityType"`
	EntityValue     string    `json:"entityValue"`
	RecordCount     int64     `json:"recordCount"`
	FirstOccurrence time.Time `json:"firstOccurrence"`
	LastOccurrence  time.Time `json:"lastOccurrence"`
}

// SearchQuery filters archived history without restoring it.
type SearchQuery struct {
	Tables    []string   `json:"tables,omitempty"`
	User      string     `json:"user,omitempty"`
	Endpoint  string     `json:"endpoint,omitempty"`
	Action    string     `json:"action,omitempty"`
	IPAddress string     `json:"ipAddress,omitempty"`
	DateFrom  *time.Time `json:"dateFrom,omitempty"`
	DateTo    *time.Time `json:"dateTo,omitempty"`
	Limit     int        `json:"limit,omitempty"`
	Offset    int        `json:"offset,omitempty"`
}

type ArchiveResult struct {
	Success     bool   `json:"success"`
	UUID        string `json:"uuid,omitempty"`
	TableName   string `json:"tableName"`
	RecordCount int64  `json:"recordCount"`
	FilePath    string `json:"filePath,omitempty"`
	FileSize    int64  `json:"fileSize,omitempty"`
	DeletedRows int64  `json:"deletedRows"`
	Error       string `json:"error,omitempty"`
}

type SearchResult struct {
	Success          bool             `json:"success"`
	Matches          []map[string]any `json:"matches"`
	TotalMatched     int              `json:"totalMatched"`
	ArchivesSearched []string         `json:"archivesSearched"`
	DurationMs       int64            `json:"durationMs"`
	Error            string           `json:"error,omitempty"`
}

type RestoreOptions struct {
	TargetTable    string `json:"targetTable,omitempty"`
	ConflictPolicy string `json:"conflictPolicy,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
	CreateTable    bool   `json:"createTable,omitempty"`
}

type RestoreResult struct {
	Success      bool   `json:"success"`
	UUID         string `json:"uuid"`
	TargetTable  string `json:"targetTable"`
	RestoredRows int64  `json:"restoredRows"`
	SkippedRows  int64  `json:"skippedRows"`
	Error        string `json:"error,omitempty"`
}

type Summary struct {
	TotalArchives  int64            `json:"totalArchives"`
	TotalRecords   int64            `json:"totalRecords"`
	TotalSizeBytes int64            `json:"totalSizeBytes"`
	OldestArchive  *time.Time       `json:"oldestArchive"`
	NewestArchive  *time.Time       `json:"newestArchive"`
	ByStatus       map[string]int64 `json:"byStatus"`
	TablesTracked  int64            `json:"tablesTracked"`
}
