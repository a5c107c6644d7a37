package mods

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/mod-overlay/modfs/filesystem/common"
	"github.com/ZanzyTHEbar/mod-overlay/modfs/indexing"

	"github.com/klauspost/compress/zip"
)

// macOS archivers add resource forks under this directory
const macOSMetadataDir = "__MACOSX"

// ArchiveMod serves files from a zip archive opened once at construction.
// Reads go through one shared file handle and are serialized.
type ArchiveMod struct {
	root    string
	mu      sync.Mutex
	file    *os.File
	entries map[indexing.PathHash]*zip.File
	names   []string
}

// NewArchiveMod opens the archive at root and indexes its entries. Archives
// that are malformed or use an unsupported compression method are rejected.
func NewArchiveMod(root string, opts ...SourceOption) (*ArchiveMod, error) {
	f, err := os.Open(root)
	if err != nil {
		return nil, &common.SourceOpenError{Path: root, Reason: err.Error(), Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &common.SourceOpenError{Path: root, Reason: err.Error(), Err: err}
	}

	reader, err := zip.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, &common.SourceOpenError{Path: root, Reason: describeZipError(err), Err: err}
	}

	a := &ArchiveMod{
		root:    root,
		file:    f,
		entries: make(map[indexing.PathHash]*zip.File, len(reader.File)),
	}

	for _, zf := range reader.File {
		if zf.FileInfo().IsDir() || strings.HasSuffix(zf.Name, "/") {
			continue
		}
		if zf.Method != zip.Store && zf.Method != zip.Deflate {
			f.Close()
			return nil, &common.SourceOpenError{
				Path:   root,
				Reason: common.ErrUnsupportedArchive.Error(),
				Err:    fmt.Errorf("%w: %s uses method %d", common.ErrUnsupportedArchive, zf.Name, zf.Method),
			}
		}

		rel := indexing.Normalize(zf.Name)
		h := indexing.Hash(rel)
		if _, dup := a.entries[h]; dup {
			slog.Warn("Archive has several entries differing only by case", "archive", root, "path", rel)
			continue
		}
		a.entries[h] = zf
		if rel != macOSMetadataDir && !strings.HasPrefix(rel, macOSMetadataDir+"/") && indexing.HasExtension(rel) {
			a.names = append(a.names, rel)
		}
	}

	o := newSourceOptions(opts)
	if err := a.applyIgnore(o.ignoreFile); err != nil {
		f.Close()
		return nil, &common.SourceOpenError{Path: root, Reason: err.Error(), Err: err}
	}

	return a, nil
}

func describeZipError(err error) string {
	switch {
	case errors.Is(err, zip.ErrFormat):
		return fmt.Sprintf("the file is malformed: %v", err)
	case errors.Is(err, zip.ErrAlgorithm):
		return common.ErrUnsupportedArchive.Error()
	default:
		return err.Error()
	}
}

// applyIgnore drops names matched by the ignore file stored at the archive root.
func (a *ArchiveMod) applyIgnore(ignoreFile string) error {
	if ignoreFile == "" {
		return nil
	}
	if _, ok := a.entries[indexing.Hash(ignoreFile)]; !ok {
		return nil
	}

	data, err := a.Load(ignoreFile)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", ignoreFile, err)
	}
	ignored := compileIgnore(data)

	kept := a.names[:0]
	for _, name := range a.names {
		if ignored.Matches(name) {
			slog.Debug("Ignoring file", "mod", a.root, "path", name)
			continue
		}
		kept = append(kept, name)
	}
	a.names = kept
	return nil
}

func (a *ArchiveMod) Root() string {
	return a.root
}

// Discover returns the archive's file names in archive order. The list is
// computed at open time.
func (a *ArchiveMod) Discover() ([]string, error) {
	return append([]string(nil), a.names...), nil
}

func (a *ArchiveMod) entry(relativePath string) (*zip.File, error) {
	zf, ok := a.entries[indexing.Hash(relativePath)]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", common.ErrNotFound, relativePath, a.root)
	}
	return zf, nil
}

func (a *ArchiveMod) Load(relativePath string) ([]byte, error) {
	zf, err := a.entry(relativePath)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	rc, err := zf.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in %s: %w", zf.Name, a.root, err)
	}
	defer rc.Close()

	buf := bytes.NewBuffer(make([]byte, 0, int(zf.UncompressedSize64)))
	if _, err := io.Copy(buf, rc); err != nil {
		return nil, fmt.Errorf("failed to read %s in %s: %w", zf.Name, a.root, err)
	}
	return buf.Bytes(), nil
}

func (a *ArchiveMod) LastModified(relativePath string) (int64, error) {
	zf, err := a.entry(relativePath)
	if err != nil {
		return 0, err
	}
	return zf.Modified.Unix(), nil
}

// Close releases the archive handle.
func (a *ArchiveMod) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.file.Close()
}
