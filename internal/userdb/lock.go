package userdb

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"firstboot/internal/sysfile"
)

// Lock is the advisory cross-process exclusion token for the account
// databases of one target root. Whoever holds it is the only writer of
// /etc/passwd and /etc/shadow under that root, machine-wide.
type Lock struct {
	f *os.File
}

// TakeLock blocks until the lock for the given target root is held.
func TakeLock(root string) (*Lock, error) {
	path := sysfile.Under(root, "/etc/.pwd.lock")
	if err := sysfile.MkdirParents(path); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("cannot open lock file %s: %w", path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("cannot lock %s: %w", path, err)
	}
	return &Lock{f: f}, nil
}

// Unlock releases the lock. Safe to call more than once.
func (l *Lock) Unlock() {
	if l == nil || l.f == nil {
		return
	}
	_ = unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	_ = l.f.Close()
	l.f = nil
}
