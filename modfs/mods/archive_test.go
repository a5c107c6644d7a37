package mods

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/mod-overlay/modfs/filesystem/common"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveModDiscover(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod.zip")
	writeZip(t, path,
		zipEntry{name: "patches/"},
		zipEntry{name: "patches/xml/Item.xml", content: "<item/>"},
		zipEntry{name: "Textures/Icon.PNG", content: "png", method: zip.Store},
		zipEntry{name: "LICENSE", content: "no extension"},
		zipEntry{name: "notes.", content: "empty extension"},
		zipEntry{name: "__MACOSX/patches/._Item.xml", content: "fork"},
	)

	mod, err := NewArchiveMod(path)
	require.NoError(t, err)
	defer mod.Close()

	assert.Equal(t, path, mod.Root())
	files, err := mod.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{"patches/xml/Item.xml", "Textures/Icon.PNG", "notes."}, files)
}

func TestArchiveModLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod.zip")
	writeZip(t, path,
		zipEntry{name: "patches/xml/Item.xml", content: "<item/>"},
		zipEntry{name: "Textures/Icon.PNG", content: "png", method: zip.Store},
	)

	mod, err := NewArchiveMod(path)
	require.NoError(t, err)
	defer mod.Close()

	data, err := mod.Load("patches/xml/Item.xml")
	require.NoError(t, err)
	assert.Equal(t, "<item/>", string(data))

	data, err = mod.Load("textures/icon.png")
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	_, err = mod.Load("patches/xml/Nope.xml")
	assert.ErrorIs(t, err, common.ErrNotFound)

	modified, err := mod.LastModified("PATCHES/XML/ITEM.XML")
	require.NoError(t, err)
	assert.Equal(t, zipModTime.Unix(), modified)

	_, err = mod.LastModified("missing.txt")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestArchiveModIgnoreFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod.zip")
	writeZip(t, path,
		zipEntry{name: ".modignore", content: "*.BAK\nDrafts\n"},
		zipEntry{name: "keep.xml", content: "keep"},
		zipEntry{name: "old.xml.bak", content: "bak"},
		zipEntry{name: "drafts/wip.xml", content: "wip"},
		zipEntry{name: "DRAFTS/Other.xml", content: "wip"},
	)

	mod, err := NewArchiveMod(path)
	require.NoError(t, err)
	defer mod.Close()

	files, err := mod.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.xml"}, files)
}

func TestArchiveModRejectsBrokenArchives(t *testing.T) {
	dir := t.TempDir()

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(dir, "broken.zip")
		require.NoError(t, os.WriteFile(path, []byte("this is not a zip archive"), 0o644))

		_, err := NewArchiveMod(path)
		var openErr *common.SourceOpenError
		require.ErrorAs(t, err, &openErr)
		assert.Equal(t, path, openErr.Path)
		assert.Contains(t, err.Error(), "broken.zip")
		assert.Contains(t, err.Error(), "malformed")
	})

	t.Run("unsupported compression", func(t *testing.T) {
		path := filepath.Join(dir, "exotic.zip")
		writeZip(t, path, zipEntry{name: "data.bin", content: "payload", method: 99})

		_, err := NewArchiveMod(path)
		var openErr *common.SourceOpenError
		require.ErrorAs(t, err, &openErr)
		assert.ErrorIs(t, err, common.ErrUnsupportedArchive)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := NewArchiveMod(filepath.Join(dir, "missing.zip"))
		var openErr *common.SourceOpenError
		require.ErrorAs(t, err, &openErr)
	})
}
