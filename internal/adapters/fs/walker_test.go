package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/parcel/internal/adapters/fs"
)

func touch(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		p := filepath.Join(root, filepath.FromSlash(r))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(r), 0o600))
	}
}

func walk(t *testing.T, w *fs.Walker, root string) []string {
	t.Helper()
	var out []string
	for f, err := range w.WalkFiles(root) {
		require.NoError(t, err)
		rel, err := filepath.Rel(root, f.Path)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestWalker_WalkFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "b.txt", "a/z.txt", "a/b/c.txt", ".git/config", "a/.jj/x", ".parcel/deps/x")
	require.NoError(t, os.Symlink(filepath.Join(root, "b.txt"), filepath.Join(root, "link")))

	files := walk(t, fs.NewWalker(".parcel"), root)
	assert.Equal(t, []string{"a/b/c.txt", "a/z.txt", "b.txt"}, files)
}

func TestWalker_IgnoresFilePatterns(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "keep.txt", "drop.pkg", "sub/drop.pkg")

	files := walk(t, fs.NewWalker("*.pkg"), root)
	assert.Equal(t, []string{"keep.txt"}, files)
}

func TestWalker_StopsEarly(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a", "b", "c")

	n := 0
	for range fs.NewWalker().WalkFiles(root) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestWalker_MissingRoot(t *testing.T) {
	var errs []error
	for _, err := range fs.NewWalker().WalkFiles(filepath.Join(t.TempDir(), "missing")) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], os.ErrNotExist)
}
