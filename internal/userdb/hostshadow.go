package userdb

import (
	"errors"
	"os"
)

// ErrNoHostEntry means the running host has no shadow entry for root to
// copy; callers fall through to the next credential source.
var ErrNoHostEntry = errors.New("host has no shadow entry for root")

// Test seam.
var hostShadowPath = "/etc/shadow"

// HostRootHash reads the running host's own shadow table and returns
// root's hash verbatim, for the copy-from-host credential path.
func HostRootHash() (string, error) {
	f, err := os.Open(hostShadowPath)
	if os.IsNotExist(err) {
		return "", ErrNoHostEntry
	}
	if err != nil {
		return "", err
	}
	defer f.Close()

	sf, err := ParseShadow(f)
	if err != nil {
		return "", err
	}
	e := sf.Find(RootName)
	if e == nil {
		return "", ErrNoHostEntry
	}
	return e.Hash, nil
}
