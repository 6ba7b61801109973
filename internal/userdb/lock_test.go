package userdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakeLock(t *testing.T) {
	root := t.TempDir()

	l, err := TakeLock(root)
	require.NoError(t, err)

	path := filepath.Join(root, "etc", ".pwd.lock")
	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())

	l.Unlock()
	// Unlock is idempotent.
	l.Unlock()

	// After release another taker must succeed immediately.
	l2, err := TakeLock(root)
	require.NoError(t, err)
	l2.Unlock()
}

func TestHostRootHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shadow")
	require.NoError(t, os.WriteFile(path, []byte(shadowFixture), 0o600))

	orig := hostShadowPath
	hostShadowPath = path
	t.Cleanup(func() { hostShadowPath = orig })

	hash, err := HostRootHash()
	require.NoError(t, err)
	assert.Equal(t, "$6$oldsalt$oldhash", hash)
}

func TestHostRootHash_Missing(t *testing.T) {
	orig := hostShadowPath
	hostShadowPath = filepath.Join(t.TempDir(), "nonexistent")
	t.Cleanup(func() { hostShadowPath = orig })

	_, err := HostRootHash()
	assert.ErrorIs(t, err, ErrNoHostEntry)
}

func TestHostRootHash_NoRootEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shadow")
	require.NoError(t, os.WriteFile(path, []byte("alice:$6$s$h:19500:0:99999:7:::\n"), 0o600))

	orig := hostShadowPath
	hostShadowPath = path
	t.Cleanup(func() { hostShadowPath = orig })

	_, err := HostRootHash()
	assert.ErrorIs(t, err, ErrNoHostEntry)
}
