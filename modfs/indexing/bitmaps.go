package indexing

import (
	roaring "github.com/RoaringBitmap/roaring"
)

// ExtensionBitmaps holds roaring bitmaps keyed by extension hash.
// Example: Hash("xml") -> bitmap of file ordinals with that extension.
type ExtensionBitmaps struct {
	Ext map[PathHash]*roaring.Bitmap
}

func NewExtensionBitmaps() *ExtensionBitmaps {
	return &ExtensionBitmaps{Ext: make(map[PathHash]*roaring.Bitmap)}
}

func (eb *ExtensionBitmaps) AddExt(ext PathHash, ordinal uint32) {
	bm, ok := eb.Ext[ext]
	if !ok {
		bm = roaring.New()
		eb.Ext[ext] = bm
	}
	bm.Add(ordinal)
}

// OrExt returns the union of the bitmaps for the given extensions.
func (eb *ExtensionBitmaps) OrExt(exts ...PathHash) *roaring.Bitmap {
	res := roaring.New()
	for _, ext := range exts {
		if bm, ok := eb.Ext[ext]; ok {
			res.Or(bm)
		}
	}
	return res
}

// Count returns how many ordinals carry ext.
func (eb *ExtensionBitmaps) Count(ext PathHash) uint64 {
	bm, ok := eb.Ext[ext]
	if !ok {
		return 0
	}
	return bm.GetCardinality()
}
