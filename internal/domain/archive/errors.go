package archive

import "errors"

var (
	ErrTableNotFound     = errors.New("table does not exist")
	ErrArchiveNotFound   = errors.New("archive record not found")
	ErrNoRecords         = errors.New("no records to archive")
	ErrCorrupted         = errors.New("archive corrupted: checksum mismatch")
	ErrMissingFile       = errors.New("archive file missing")
	ErrBadPayload        = errors.New("archive payload malformed")
	ErrBadConflictPolicy = errors.New("unknown conflict resolution policy")
)
