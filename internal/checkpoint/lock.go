package checkpoint

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
)

// ErrLocked is returned when another pipeline instance holds the
// checkpoint lock.
var ErrLocked = eris.New("checkpoint: locked by another run")

// Lock is an exclusive-access guard for a checkpoint log. The log
// format is single-writer; two concurrent runs appending to the same
// file would interleave batches.
type Lock struct {
	path string
}

// Acquire creates <logPath>.lock exclusively, recording the owner pid.
// It fails with ErrLocked if the lock file already exists.
func Acquire(logPath string) (*Lock, error) {
	path := logPath + ".lock"
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if os.IsExist(err) {
		return nil, eris.Wrapf(ErrLocked, "%s exists (stale lock from a crashed run? remove it manually)", path)
	}
	if err != nil {
		return nil, eris.Wrap(err, "checkpoint: create lock")
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	if err := f.Close(); err != nil {
		return nil, eris.Wrap(err, "checkpoint: write lock")
	}
	return &Lock{path: path}, nil
}

// Release removes the lock file. Safe to call once per Acquire.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return eris.Wrap(err, "checkpoint: remove lock")
	}
	return nil
}
