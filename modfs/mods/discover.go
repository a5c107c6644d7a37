package mods

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/mod-overlay/modfs/filesystem/common"
	"github.com/ZanzyTHEbar/mod-overlay/modfs/filesystem/interfaces"
)

// DiscoverSources lists the mods directly under root in name order.
// Directories become DirectoryMods and .zip files ArchiveMods; names starting
// with '.' and any other file are skipped. A missing root has no mods.
func DiscoverSources(root string, opts ...SourceOption) ([]interfaces.VirtualFS, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("Mods directory does not exist, no mods will be loaded", "root", root)
			return nil, nil
		}
		return nil, &common.SourceOpenError{Path: root, Err: err}
	}

	var sources []interfaces.VirtualFS
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		full := filepath.Join(root, name)
		mode := entry.Type()
		if mode&fs.ModeSymlink != 0 {
			info, err := os.Stat(full)
			if err != nil {
				slog.Warn("Skipping broken link in mods directory", "path", full, "error", err)
				continue
			}
			mode = info.Mode().Type()
		}

		var (
			source interfaces.VirtualFS
			err    error
		)
		switch {
		case mode.IsDir():
			source, err = NewDirectoryMod(full, opts...)
		case mode.IsRegular() && strings.EqualFold(filepath.Ext(name), ".zip"):
			source, err = NewArchiveMod(full, opts...)
		default:
			continue
		}
		if err != nil {
			CloseSources(sources)
			return nil, err
		}

		slog.Debug("Discovered mod", "path", full)
		sources = append(sources, source)
	}

	return sources, nil
}

// CloseSources closes every source holding an open handle.
func CloseSources(sources []interfaces.VirtualFS) error {
	var errs []error
	for _, source := range sources {
		if closer, ok := source.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}
