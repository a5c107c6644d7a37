package trees

import (
	"github.com/ZanzyTHEbar/mod-overlay/modfs/indexing"
)

// ResourcePath describes one file or directory of the overlay by hashes only.
// Tables of ResourcePath are sorted by Path so they can be binary searched.
type ResourcePath struct {
	Path     indexing.PathHash
	Parent   indexing.PathHash
	Filename indexing.PathHash
	Ext      indexing.PathHash // NoExtension for directories
}

// NewResourcePath computes the hashes of p. The root's parent is the root.
func NewResourcePath(p string) ResourcePath {
	ext := indexing.NoExtension
	if indexing.HasExtension(p) {
		ext = indexing.Hash(indexing.Extension(p))
	}
	return ResourcePath{
		Path:     indexing.Hash(p),
		Parent:   indexing.Hash(indexing.Parent(p)),
		Filename: indexing.Hash(indexing.Base(p)),
		Ext:      ext,
	}
}

// newDirectoryPath is NewResourcePath for directories, which never carry an
// extension even when their name contains a dot.
func newDirectoryPath(p string) ResourcePath {
	rp := NewResourcePath(p)
	rp.Ext = indexing.NoExtension
	return rp
}

// DirectoryInfo lists the direct children of a directory. Both hash lists are
// sorted once the builder is finished.
type DirectoryInfo struct {
	Path           indexing.PathHash
	Parent         indexing.PathHash
	FileHashes     []indexing.PathHash
	ChildDirHashes []indexing.PathHash
}

func NewDirectoryInfo(rp ResourcePath) DirectoryInfo {
	return DirectoryInfo{
		Path:   rp.Path,
		Parent: rp.Parent,
	}
}

// IsRoot reports whether d is the overlay root.
func (d *DirectoryInfo) IsRoot() bool {
	return d.Path == indexing.RootHash
}
