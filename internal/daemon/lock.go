package daemon

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// ErrAlreadyRunning reports that another daemon instance holds the lock.
var ErrAlreadyRunning = errors.New("clipdeck daemon already running")

// Lock is the single-instance file lock. A second daemon would double-
// register the global hotkey and run a competing poller, so startup takes an
// exclusive flock first.
type Lock struct {
	f    *os.File
	path string
}

// AcquireLock takes the exclusive lock, returning ErrAlreadyRunning when a
// live daemon holds it.
func AcquireLock(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, ErrAlreadyRunning
	}

	f.Truncate(0)
	f.WriteString(strconv.Itoa(os.Getpid()))
	return &Lock{f: f, path: path}, nil
}

// Release drops the lock and removes the file.
func (l *Lock) Release() {
	unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	l.f.Close()
	os.Remove(l.path)
}
