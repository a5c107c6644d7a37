package indexing

import (
	"github.com/tidwall/btree"
)

// BucketMap is a hash table with a fixed number of buckets, each bucket an
// ordered btree keyed by PathHash. The bucket count never changes, so memory
// growth is limited to the trees themselves.
type BucketMap[V any] struct {
	buckets []*btree.Map[PathHash, V]
}

// NewBucketMap creates a map with bucketCount buckets. A non-positive count
// is treated as one bucket.
func NewBucketMap[V any](bucketCount int) *BucketMap[V] {
	bucketCount = max(bucketCount, 1)
	buckets := make([]*btree.Map[PathHash, V], bucketCount)
	for i := range buckets {
		buckets[i] = new(btree.Map[PathHash, V])
	}
	return &BucketMap[V]{buckets: buckets}
}

func (bm *BucketMap[V]) bucketFor(hash PathHash) *btree.Map[PathHash, V] {
	return bm.buckets[uint32(hash)%uint32(len(bm.buckets))]
}

// Get returns the value stored under hash.
func (bm *BucketMap[V]) Get(hash PathHash) (V, bool) {
	return bm.bucketFor(hash).Get(hash)
}

// Insert stores value under hash and returns the previous value, if any.
func (bm *BucketMap[V]) Insert(hash PathHash, value V) (V, bool) {
	return bm.bucketFor(hash).Set(hash, value)
}

// Remove deletes hash and returns the removed value, if any.
func (bm *BucketMap[V]) Remove(hash PathHash) (V, bool) {
	return bm.bucketFor(hash).Delete(hash)
}

func (bm *BucketMap[V]) ContainsKey(hash PathHash) bool {
	_, ok := bm.Get(hash)
	return ok
}

// Len returns the number of entries across all buckets.
func (bm *BucketMap[V]) Len() int {
	n := 0
	for _, b := range bm.buckets {
		n += b.Len()
	}
	return n
}

func (bm *BucketMap[V]) BucketCount() int {
	return len(bm.buckets)
}

// Scan visits every entry, bucket by bucket and in hash order inside a
// bucket. Returning false from fn stops the scan.
func (bm *BucketMap[V]) Scan(fn func(hash PathHash, value V) bool) {
	for _, b := range bm.buckets {
		stopped := false
		b.Scan(func(key PathHash, value V) bool {
			if !fn(key, value) {
				stopped = true
				return false
			}
			return true
		})
		if stopped {
			return
		}
	}
}
