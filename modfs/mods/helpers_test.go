package mods

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/mod-overlay/modfs/filesystem/common"
	"github.com/ZanzyTHEbar/mod-overlay/modfs/indexing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

// writeTree creates files below root. Keys use forward slashes.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

type zipEntry struct {
	name    string
	content string
	method  uint16
}

var zipModTime = time.Date(2024, time.March, 1, 12, 30, 0, 0, time.UTC)

// writeZip writes an archive with the entries in the given order. Names
// ending in '/' become directory entries.
func writeZip(t *testing.T, path string, entries ...zipEntry) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	w.RegisterCompressor(99, func(out io.Writer) (io.WriteCloser, error) {
		return nopWriteCloser{out}, nil
	})

	for _, e := range entries {
		method := e.method
		if method == 0 {
			method = zip.Deflate
		}
		header := &zip.FileHeader{Name: e.name, Method: method, Modified: zipModTime}
		fw, err := w.CreateHeader(header)
		require.NoError(t, err)
		if e.content != "" {
			_, err = fw.Write([]byte(e.content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// memFS is an in-memory source for resolver and manager tests.
type memFS struct {
	root  string
	files map[string]string
}

func newMemFS(root string, files map[string]string) *memFS {
	return &memFS{root: root, files: files}
}

func (m *memFS) Root() string { return m.root }

func (m *memFS) Discover() ([]string, error) {
	var paths []string
	for p := range m.files {
		if indexing.HasExtension(p) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (m *memFS) find(rel string) (string, bool) {
	h := indexing.Hash(rel)
	for p, content := range m.files {
		if indexing.Hash(p) == h {
			return content, true
		}
	}
	return "", false
}

func (m *memFS) Load(rel string) ([]byte, error) {
	content, ok := m.find(rel)
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrNotFound, rel)
	}
	return []byte(content), nil
}

func (m *memFS) LastModified(rel string) (int64, error) {
	if _, ok := m.find(rel); !ok {
		return 0, fmt.Errorf("%w: %s", common.ErrNotFound, rel)
	}
	return zipModTime.Unix(), nil
}

// newMod builds an unresolved Mod backed by an empty memFS.
func newMod(root, id string, deps ...string) *Mod {
	return &Mod{
		Manifest: Manifest{ID: id, Dependencies: deps},
		FS:       newMemFS(root, nil),
	}
}

func modRoots(mods []*Mod) []string {
	roots := make([]string, len(mods))
	for i, m := range mods {
		roots[i] = m.FS.Root()
	}
	return roots
}
