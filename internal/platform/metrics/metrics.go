package metrics

import (
	"sync/atomic"
)

type Collector struct {
	archivesStarted   uint64
	archivesCompleted uint64
	archivesFailed    uint64
	rowsArchived      uint64
	bytesWritten      uint64
	searchesRun       uint64
	verifyFailures    uint64
	restoresRun       uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) ArchiveStarted() {
	atomic.AddUint64(&c.archivesStarted, 1)
}

func (c *Collector) ArchiveCompleted(rows int64, bytes int64) {
	atomic.AddUint64(&c.archivesCompleted, 1)
	atomic.AddUint64(&c.rowsArchived, uint64(rows))
	atomic.AddUint64(&c.bytesWritten, uint64(bytes))
}

func (c *Collector) ArchiveFailed() {
	atomic.AddUint64(&c.archivesFailed, 1)
}

func (c *Collector) SearchRun() {
	atomic.AddUint64(&c.searchesRun, 1)
}

func (c *Collector) VerifyFailed() {
	atomic.AddUint64(&c.verifyFailures, 1)
}

func (c *Collector) RestoreRun() {
	atomic.AddUint64(&c.restoresRun, 1)
}

func (c *Collector) Snapshot() map[string]any {
	return map[string]any{
		"archivesStarted":   atomic.LoadUint64(&c.archivesStarted),
		"archivesCompleted": atomic.LoadUint64(&c.archivesCompleted),
		"archivesFailed":    atomic.LoadUint64(&c.archivesFailed),
		"rowsArchived":      atomic.LoadUint64(&c.rowsArchived),
		"bytesWritten":      atomic.LoadUint64(&c.bytesWritten),
		"searchesRun":       atomic.LoadUint64(&c.searchesRun),
		"verifyFailures":    atomic.LoadUint64(&c.verifyFailures),
		"restoresRun":       atomic.LoadUint64(&c.restoresRun),
	}
}
