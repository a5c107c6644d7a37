package mods

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/mod-overlay/modfs/filesystem/common"
	"github.com/ZanzyTHEbar/mod-overlay/modfs/filesystem/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceRoots(sources []interfaces.VirtualFS) []string {
	roots := make([]string, len(sources))
	for i, s := range sources {
		roots[i] = s.Root()
	}
	return roots
}

func TestDiscoverSources(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b-dir/a.xml":      "<a/>",
		"a-dir/b.xml":      "<b/>",
		".hidden/c.xml":    "<c/>",
		"notes.txt":        "not a mod",
		".disabled.zip":    "ignored even though it is not a zip",
		"a-dir/nested.zip": "only direct entries are mods",
	})
	writeZip(t, filepath.Join(root, "c-archive.zip"), zipEntry{name: "d.xml", content: "<d/>"})
	writeZip(t, filepath.Join(root, "D-ARCHIVE.ZIP"), zipEntry{name: "e.xml", content: "<e/>"})

	sources, err := DiscoverSources(root)
	require.NoError(t, err)
	defer CloseSources(sources)

	assert.Equal(t, []string{
		filepath.Join(root, "D-ARCHIVE.ZIP"),
		filepath.Join(root, "a-dir"),
		filepath.Join(root, "b-dir"),
		filepath.Join(root, "c-archive.zip"),
	}, sourceRoots(sources))

	assert.IsType(t, &ArchiveMod{}, sources[0])
	assert.IsType(t, &DirectoryMod{}, sources[1])
}

func TestDiscoverSourcesMissingRoot(t *testing.T) {
	sources, err := DiscoverSources(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestDiscoverSourcesBrokenArchive(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a-dir/a.xml": "<a/>"})
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.zip"), []byte("garbage"), 0o644))

	_, err := DiscoverSources(root)
	var openErr *common.SourceOpenError
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, filepath.Join(root, "broken.zip"), openErr.Path)
}
