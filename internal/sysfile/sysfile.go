// Package sysfile writes configuration files into a target filesystem
// tree, optionally rooted somewhere other than /. All writes are
// flushed to disk before they are reported as successful, so a crash
// right after a step completes cannot leave a truncated file behind.
package sysfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Under resolves an absolute target path beneath the given filesystem
// root. An empty root means the running system.
func Under(root, path string) string {
	if root == "" {
		return path
	}
	return filepath.Join(root, path)
}

// Exists reports whether the path exists. A dangling symlink counts: a
// setting whose destination is a symlink must not be overwritten just
// because the link target is missing.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// MkdirParents creates the parent directories of path.
func MkdirParents(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// WriteDurable creates or replaces path with data. Parent directories
// are created as needed and the file is fsynced before close. When
// atomic is set the data goes through a same-directory temporary file
// and a rename, so a concurrent reader never observes a partial file.
func WriteDurable(path string, data []byte, perm os.FileMode, atomic bool) error {
	if err := MkdirParents(path); err != nil {
		return err
	}

	if !atomic {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
		if err != nil {
			return err
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Sync(); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	syncDir(dir)
	return nil
}

func syncDir(dir string) {
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
}

// KV is one KEY=VALUE line of an environment-style configuration file.
type KV struct {
	Key   string
	Value string
}

// WriteEnvFile writes KEY=VALUE lines the way /etc/locale.conf and
// /etc/vconsole.conf expect them. Values with shell metacharacters are
// quoted.
func WriteEnvFile(path string, pairs []KV) error {
	var b strings.Builder
	for _, kv := range pairs {
		b.WriteString(kv.Key)
		b.WriteByte('=')
		if strings.ContainsAny(kv.Value, " \t\"'\\$`") {
			b.WriteString(fmt.Sprintf("%q", kv.Value))
		} else {
			b.WriteString(kv.Value)
		}
		b.WriteByte('\n')
	}
	return WriteDurable(path, []byte(b.String()), 0o644, true)
}

// WriteOneLine writes a single trimmed line followed by a newline.
func WriteOneLine(path, line string, atomic bool) error {
	return WriteDurable(path, []byte(strings.TrimSpace(line)+"\n"), 0o644, atomic)
}

// ReadOneLine returns the first line of the file, trimmed.
func ReadOneLine(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimSpace(line), nil
}

// Symlink creates or replaces a symlink at path pointing at target.
// The replacement goes through a temporary name and a rename so the
// link is never missing or half-written.
func Symlink(target, path string) error {
	if err := MkdirParents(path); err != nil {
		return err
	}
	if err := os.Symlink(target, path); err == nil || !os.IsExist(err) {
		return err
	}
	tmp := path + ".tmp"
	_ = os.Remove(tmp)
	if err := os.Symlink(target, tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// CopyHostFile duplicates a file from the running host into the target
// tree. A missing source is reported as-is so callers can treat it as
// "nothing to copy".
func CopyHostFile(src, dst string, perm os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return WriteDurable(dst, data, perm, true)
}
