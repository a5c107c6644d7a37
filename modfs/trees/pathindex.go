package trees

import (
	"log/slog"
	"strings"

	"github.com/armon/go-radix"

	"github.com/ZanzyTHEbar/mod-overlay/modfs/indexing"
)

// PathIndexStats records how the index was filled
type PathIndexStats struct {
	TotalPaths int64
	Insertions int64
}

// PatriciaPathIndex provides O(k) prefix lookups over case-folded relative
// paths using a compressed trie (patricia tree), where k is the length of
// the prefix. Keys are lower-cased; values keep the original spelling.
//
// The index is filled once during startup and only read afterwards, so it
// carries no lock of its own and lookups must not mutate it.
type PatriciaPathIndex struct {
	tree  *radix.Tree
	stats PathIndexStats
}

func NewPatriciaPathIndex() *PatriciaPathIndex {
	return &PatriciaPathIndex{tree: radix.New()}
}

// Insert adds a path. An already indexed path keeps its first spelling.
func (idx *PatriciaPathIndex) Insert(p string) {
	p = indexing.Normalize(p)
	key := strings.ToLower(p)

	idx.stats.Insertions++
	if _, exists := idx.tree.Get(key); exists {
		return
	}
	idx.tree.Insert(key, p)
	idx.stats.TotalPaths++
}

// Lookup finds a path by its exact, case-insensitive spelling.
func (idx *PatriciaPathIndex) Lookup(p string) (string, bool) {
	value, found := idx.tree.Get(strings.ToLower(indexing.Normalize(p)))
	if !found {
		return "", false
	}
	return value.(string), true
}

// PrefixLookup returns every indexed path starting with prefix, in lexical
// order of the case-folded keys. A prefix ending in '/' only matches inside
// that directory.
func (idx *PatriciaPathIndex) PrefixLookup(prefix string) []string {
	key := strings.ToLower(strings.ReplaceAll(prefix, "\\", "/"))
	key = strings.TrimPrefix(key, "/")

	var results []string
	idx.tree.WalkPrefix(key, func(_ string, value interface{}) bool {
		if p, ok := value.(string); ok {
			results = append(results, p)
		}
		return false // Continue walking
	})

	slog.Debug("Prefix lookup completed",
		"prefix", key,
		"results_count", len(results))

	return results
}

// Size returns the number of indexed paths
func (idx *PatriciaPathIndex) Size() int {
	return idx.tree.Len()
}

// GetStats returns a copy of the index statistics
func (idx *PatriciaPathIndex) GetStats() PathIndexStats {
	return idx.stats
}
