package mods

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/mod-overlay/modfs/filesystem/common"
	"github.com/ZanzyTHEbar/mod-overlay/modfs/indexing"
)

// DirectoryMod serves loose files from a directory on disk.
type DirectoryMod struct {
	root       string
	ignoreFile string
}

// NewDirectoryMod opens root as a mod. root must be an existing directory.
func NewDirectoryMod(root string, opts ...SourceOption) (*DirectoryMod, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &common.SourceOpenError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &common.SourceOpenError{Path: root, Reason: "it is not a directory", Err: fs.ErrInvalid}
	}

	o := newSourceOptions(opts)
	return &DirectoryMod{root: root, ignoreFile: o.ignoreFile}, nil
}

func (d *DirectoryMod) Root() string {
	return d.root
}

func (d *DirectoryMod) loadIgnore() (*ignoreMatcher, error) {
	if d.ignoreFile == "" {
		return nil, nil
	}

	ignorePath := filepath.Join(d.root, d.ignoreFile)
	data, err := os.ReadFile(ignorePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading %s: %w", ignorePath, err)
	}
	return compileIgnore(data), nil
}

// Discover walks the directory and returns every regular file that has an
// extension, relative to the root and with forward slashes.
func (d *DirectoryMod) Discover() ([]string, error) {
	ignored, err := d.loadIgnore()
	if err != nil {
		return nil, &common.SourceOpenError{Path: d.root, Err: err}
	}

	var paths []string
	err = filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if !indexing.HasExtension(rel) {
			return nil
		}
		if ignored.Matches(rel) {
			slog.Debug("Ignoring file", "mod", d.root, "path", rel)
			return nil
		}

		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, &common.SourceOpenError{Path: d.root, Err: err}
	}

	return paths, nil
}

// resolve maps a relative path to a file on disk. When the exact spelling
// does not exist, each component is matched case-insensitively.
func (d *DirectoryMod) resolve(relativePath string) (string, error) {
	rel := indexing.Normalize(relativePath)
	full := filepath.Join(d.root, filepath.FromSlash(rel))

	if _, err := os.Lstat(full); err == nil {
		return full, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	dir := d.root
	for _, component := range strings.Split(rel, "/") {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return "", fmt.Errorf("%w: %s in %s", common.ErrNotFound, rel, d.root)
		}

		match := ""
		for _, entry := range entries {
			if strings.EqualFold(entry.Name(), component) {
				match = entry.Name()
				break
			}
		}
		if match == "" {
			return "", fmt.Errorf("%w: %s in %s", common.ErrNotFound, rel, d.root)
		}
		dir = filepath.Join(dir, match)
	}
	return dir, nil
}

func (d *DirectoryMod) Load(relativePath string) ([]byte, error) {
	full, err := d.resolve(relativePath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s in %s", common.ErrNotFound, relativePath, d.root)
	}
	return data, err
}

func (d *DirectoryMod) LastModified(relativePath string) (int64, error) {
	full, err := d.resolve(relativePath)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s in %s", common.ErrNotFound, relativePath, d.root)
		}
		return 0, err
	}
	return info.ModTime().Unix(), nil
}
