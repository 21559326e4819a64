package fsutil

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	require.NoError(t, m.WriteFile("dir/file.txt", []byte("hello"), 0o644))

	data, err := m.ReadFile("dir/file.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	_, err = m.ReadFile("dir/missing.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMemoryFileSystem_CreatePersistsOnClose(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	w, err := m.Create("out.png")
	require.NoError(t, err)

	_, err = w.Write([]byte("part one "))
	require.NoError(t, err)
	_, err = w.Write([]byte("part two"))
	require.NoError(t, err)

	// Not visible until the writer is closed.
	assert.False(t, m.Exists("out.png"))
	require.NoError(t, w.Close())

	data, err := m.ReadFile("out.png")
	require.NoError(t, err)
	assert.Equal(t, "part one part two", string(data))
}

func TestMemoryFileSystem_MkdirAll(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	require.NoError(t, m.MkdirAll("a/b/c", 0o755))

	assert.True(t, m.Exists("a"))
	assert.True(t, m.Exists(filepath.Join("a", "b")))
	assert.True(t, m.Exists(filepath.Join("a", "b", "c")))

	info, err := m.Stat("a/b")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMemoryFileSystem_Stat(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	require.NoError(t, m.WriteFile("f.bin", []byte{1, 2, 3}, 0o600))

	info, err := m.Stat("f.bin")
	require.NoError(t, err)
	assert.Equal(t, "f.bin", info.Name())
	assert.Equal(t, int64(3), info.Size())
	assert.False(t, info.IsDir())

	_, err = m.Stat("nope")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestOSFileSystem(t *testing.T) {
	t.Parallel()

	var osfs OSFileSystem
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "file.txt")

	require.NoError(t, osfs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, osfs.WriteFile(path, []byte("on disk"), 0o644))
	assert.True(t, osfs.Exists(path))

	data, err := osfs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "on disk", string(data))

	w, err := osfs.Create(filepath.Join(dir, "streamed.txt"))
	require.NoError(t, err)
	_, err = w.Write([]byte("streamed"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	info, err := osfs.Stat(filepath.Join(dir, "streamed.txt"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("streamed")), info.Size())
}
