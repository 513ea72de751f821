package archive

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusVerified  = "verified"
	StatusCorrupted = "corrupted"
	StatusMissing   = "missing"
	StatusFailed    = "failed"
	StatusDeleted   = "deleted"
)

const (
	EntityUser     = "user"
	EntityEndpoint = "endpoint"
	EntityAction   = "action"
	EntityIP       = "ip_address"
	EntityStatus   = "status"
)

const (
	ConflictSkip      = "skip"
	ConflictOverwrite = "overwrite"
	ConflictFail      = "fail"
)

// TimestampColumn is the column archival cuts on; tracked tables carry it.
const TimestampColumn = "created_at"

const DefaultChunkSize = 10000
