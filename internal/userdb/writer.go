package userdb

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// RootName is the only account this package ever modifies.
const RootName = "root"

// Seams for tests.
var (
	renameFile = os.Rename

	nowDays = func() int64 {
		return time.Now().Unix() / 86400
	}
)

// WritePasswd rewrites the password table at path so that root's
// credential field equals password (the placeholder "x", or "" for a
// deleted password). All other records pass through unchanged; a
// missing root record is synthesized with the standard defaults.
func WritePasswd(path, password string) error {
	return replaceTable(path, func(orig *os.File, tmp *os.File) error {
		var f *PasswdFile
		if orig != nil {
			var err error
			f, err = ParsePasswd(orig)
			if err != nil {
				return err
			}
		} else {
			f = &PasswdFile{}
		}

		if e := f.Find(RootName); e != nil {
			e.Password = password
		} else {
			f.append(PasswdEntry{
				Name:     RootName,
				Password: password,
				UID:      0,
				GID:      0,
				Gecos:    "Super User",
				Home:     "/root",
				Shell:    "/bin/sh",
			})
		}

		_, err := tmp.Write(f.Bytes())
		return err
	})
}

// WriteShadow rewrites the shadow table at path so that root's hash
// field equals hash, stamping the last-change field with the current
// day count. A missing root record is synthesized with every aging
// field unset.
func WriteShadow(path, hash string) error {
	return replaceTable(path, func(orig *os.File, tmp *os.File) error {
		var f *ShadowFile
		if orig != nil {
			var err error
			f, err = ParseShadow(orig)
			if err != nil {
				return err
			}
		} else {
			f = &ShadowFile{}
		}

		days := strconv.FormatInt(nowDays(), 10)
		if e := f.Find(RootName); e != nil {
			e.Hash = hash
			e.LastChange = days
		} else {
			f.append(ShadowEntry{
				Name:       RootName,
				Hash:       hash,
				LastChange: days,
			})
		}

		_, err := tmp.Write(f.Bytes())
		return err
	})
}

// labelAttr is the xattr carrying the file's security label.
var labelAttr = "security.selinux"

// copyLabel carries the original table's security label over to its
// replacement, so a labeled system does not end up with a mislabeled
// credential database. Unlabeled files and filesystems without xattr
// support are left alone.
func copyLabel(orig, tmp *os.File) {
	sz, err := unix.Fgetxattr(int(orig.Fd()), labelAttr, nil)
	if err != nil || sz <= 0 {
		return
	}
	buf := make([]byte, sz)
	n, err := unix.Fgetxattr(int(orig.Fd()), labelAttr, buf)
	if err != nil {
		return
	}
	_ = unix.Fsetxattr(int(tmp.Fd()), labelAttr, buf[:n], 0)
}

// replaceTable opens the table at path (tolerating its absence), lets
// merge write the replacement into a same-directory temporary file, and
// atomically swaps it in. The temporary starts at mode 0000 and only
// inherits the original's permission bits when an original exists, so a
// new database is never observable world-readable. Any failure removes
// the temporary and leaves the original untouched.
func replaceTable(path string, merge func(orig *os.File, tmp *os.File) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("cannot create temporary file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	var orig *os.File
	switch f, err := os.Open(path); {
	case err == nil:
		orig = f
		defer orig.Close()
		st, err := orig.Stat()
		if err != nil {
			return err
		}
		if err := tmp.Chmod(st.Mode().Perm()); err != nil {
			return err
		}
		copyLabel(orig, tmp)
	case os.IsNotExist(err):
		if err := tmp.Chmod(0o000); err != nil {
			return err
		}
	default:
		return err
	}

	if err := merge(orig, tmp); err != nil {
		return err
	}

	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := renameFile(tmpName, path); err != nil {
		return fmt.Errorf("cannot replace %s: %w", path, err)
	}
	committed = true

	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
