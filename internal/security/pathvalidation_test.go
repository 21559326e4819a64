package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inside.png"), []byte("x"), 0o644))

	t.Run("accepts a file inside", func(t *testing.T) {
		assert.NoError(t, ValidatePathWithinDirectory(filepath.Join(dir, "inside.png"), dir))
	})

	t.Run("accepts a not-yet-created file inside", func(t *testing.T) {
		assert.NoError(t, ValidatePathWithinDirectory(filepath.Join(dir, "later.png"), dir))
	})

	t.Run("rejects dotdot escape", func(t *testing.T) {
		assert.Error(t, ValidatePathWithinDirectory(filepath.Join(dir, "..", "escape.png"), dir))
	})

	t.Run("rejects an unrelated absolute path", func(t *testing.T) {
		assert.Error(t, ValidatePathWithinDirectory("/etc/passwd", dir))
	})

	t.Run("rejects a symlink pointing outside", func(t *testing.T) {
		outside := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(outside, "target.txt"), []byte("x"), 0o644))

		link := filepath.Join(dir, "link.txt")
		require.NoError(t, os.Symlink(filepath.Join(outside, "target.txt"), link))
		assert.Error(t, ValidatePathWithinDirectory(link, dir))
	})
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"0x34", "0x34"},
		{"sensor one", "sensor_one"},
		{"../../etc/passwd", ".._.._etc_passwd"},
		{"a///b", "a_b"},
		{"", "unknown"},
		{"///", "unknown"},
		{"trailing_", "trailing"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeFilename(tc.in), "input %q", tc.in)
	}
}
