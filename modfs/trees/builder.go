package trees

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ZanzyTHEbar/mod-overlay/modfs/filesystem/common"
	"github.com/ZanzyTHEbar/mod-overlay/modfs/indexing"
)

// FilesystemBuilder turns a stream of relative file paths into the sorted
// ResourcePath and DirectoryInfo tables. It starts with the root directory.
type FilesystemBuilder struct {
	paths     []ResourcePath
	dirs      []DirectoryInfo
	pathIndex map[indexing.PathHash]int // hash -> position in paths
	dirIndex  map[indexing.PathHash]int // hash -> position in dirs
}

func NewFilesystemBuilder() *FilesystemBuilder {
	b := &FilesystemBuilder{
		pathIndex: make(map[indexing.PathHash]int),
		dirIndex:  make(map[indexing.PathHash]int),
	}
	root := newDirectoryPath("")
	b.addResourcePath(root)
	b.dirIndex[root.Path] = len(b.dirs)
	b.dirs = append(b.dirs, NewDirectoryInfo(root))
	return b
}

func (b *FilesystemBuilder) addResourcePath(rp ResourcePath) {
	b.pathIndex[rp.Path] = len(b.paths)
	b.paths = append(b.paths, rp)
}

// GetFolderByHash returns the directory registered under hash.
func (b *FilesystemBuilder) GetFolderByHash(hash indexing.PathHash) (*DirectoryInfo, bool) {
	idx, ok := b.dirIndex[hash]
	if !ok {
		return nil, false
	}
	return &b.dirs[idx], true
}

// AddFile registers a file and links it into its parent directory, creating
// missing ancestors first. Adding the same path twice is a no-op.
func (b *FilesystemBuilder) AddFile(p string) error {
	p = indexing.Normalize(p)
	if p == "" {
		return fmt.Errorf("%w: the root cannot be a file", common.ErrPathConflict)
	}

	rp := NewResourcePath(p)
	if _, exists := b.pathIndex[rp.Path]; exists {
		if _, isDir := b.dirIndex[rp.Path]; isDir {
			return fmt.Errorf("%w: %s", common.ErrPathConflict, p)
		}
		return nil
	}

	parentIdx, err := b.AddFolderRecursive(indexing.Parent(p))
	if err != nil {
		return err
	}

	b.dirs[parentIdx].FileHashes = append(b.dirs[parentIdx].FileHashes, rp.Path)
	b.addResourcePath(rp)
	return nil
}

// AddDirectory creates a directory whose parent already exists and links it
// into that parent. An existing directory is returned unchanged.
func (b *FilesystemBuilder) AddDirectory(p string) (*DirectoryInfo, error) {
	p = indexing.Normalize(p)
	rp := newDirectoryPath(p)

	if idx, ok := b.dirIndex[rp.Path]; ok {
		return &b.dirs[idx], nil
	}
	if _, exists := b.pathIndex[rp.Path]; exists {
		return nil, fmt.Errorf("%w: %s", common.ErrPathConflict, p)
	}

	parentIdx, ok := b.dirIndex[rp.Parent]
	if !ok {
		return nil, fmt.Errorf("%w: parent of directory %s", common.ErrNotFound, p)
	}

	b.dirs[parentIdx].ChildDirHashes = append(b.dirs[parentIdx].ChildDirHashes, rp.Path)
	b.addResourcePath(rp)
	b.dirIndex[rp.Path] = len(b.dirs)
	b.dirs = append(b.dirs, NewDirectoryInfo(rp))

	slog.Debug("Created directory", "path", p, "hash", rp.Path.String())
	return &b.dirs[len(b.dirs)-1], nil
}

// AddFolderRecursive makes sure p and all of its ancestors exist and returns
// the position of p's DirectoryInfo. It walks up to the nearest existing
// ancestor, then creates the missing directories top-down.
func (b *FilesystemBuilder) AddFolderRecursive(p string) (int, error) {
	p = indexing.Normalize(p)

	var missing []string
	for cur := p; ; cur = indexing.Parent(cur) {
		if _, ok := b.dirIndex[indexing.Hash(cur)]; ok {
			break
		}
		missing = append(missing, cur)
	}

	for i := len(missing) - 1; i >= 0; i-- {
		if _, err := b.AddDirectory(missing[i]); err != nil {
			return 0, err
		}
	}
	return b.dirIndex[indexing.Hash(p)], nil
}

// Len returns the number of registered paths and directories.
func (b *FilesystemBuilder) Len() (paths int, dirs int) {
	return len(b.paths), len(b.dirs)
}

// Finish sorts both tables and every child list by hash. The builder must
// not be used afterwards.
func (b *FilesystemBuilder) Finish() ([]ResourcePath, []DirectoryInfo) {
	slices.SortFunc(b.paths, func(x, y ResourcePath) int { return cmp.Compare(x.Path, y.Path) })
	slices.SortFunc(b.dirs, func(x, y DirectoryInfo) int { return cmp.Compare(x.Path, y.Path) })
	for i := range b.dirs {
		slices.Sort(b.dirs[i].FileHashes)
		slices.Sort(b.dirs[i].ChildDirHashes)
	}

	paths, dirs := b.paths, b.dirs
	b.paths, b.dirs, b.pathIndex, b.dirIndex = nil, nil, nil, nil
	return paths, dirs
}
