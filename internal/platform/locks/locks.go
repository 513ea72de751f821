package locks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danjacques/gofslock/fslock"
)

var ErrBusy = errors.New("another archive run holds the table lock")

// TableLocks hands out per-table advisory file locks so two archive runs
// cannot export and delete overlapping row sets.
type TableLocks struct {
	dir string
}

func New(dir string) (*TableLocks, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "logvault-locks")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return &TableLocks{dir: dir}, nil
}

// WithTable runs fn while holding the exclusive lock for a table. If the
// lock is already held the call fails immediately instead of queueing; the
// scheduler retries on its next tick.
func (l *TableLocks) WithTable(table string, fn func() error) error {
	path := filepath.Join(l.dir, table+".lock")
	err := fslock.With(path, fn)
	if errors.Is(err, fslock.ErrLockHeld) {
		return fmt.Errorf("%w: %s", ErrBusy, table)
	}
	return err
}
