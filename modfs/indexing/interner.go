package indexing

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/mod-overlay/modfs/filesystem/common"
)

// MaxComponentCount is the inline capacity of an InternedPath. Configured
// limits above it are clamped.
const MaxComponentCount = 16

// StrID identifies an interned string. The zero value marks an empty slot.
type StrID uint16

// Interner deduplicates path components into small ids.
type Interner struct {
	strings []string
	ids     map[string]StrID
}

func NewInterner() *Interner {
	return &Interner{ids: make(map[string]StrID)}
}

// Get returns the string for id, or "" for the zero id.
func (in *Interner) Get(id StrID) string {
	if id == 0 || int(id) > len(in.strings) {
		return ""
	}
	return in.strings[id-1]
}

// Add interns s. Adding an equal string again returns the same id.
func (in *Interner) Add(s string) (StrID, error) {
	if id, ok := in.ids[s]; ok {
		return id, nil
	}
	if len(in.strings) >= math.MaxUint16 {
		return 0, fmt.Errorf("%w: cannot add %q", common.ErrInternerFull, s)
	}
	in.strings = append(in.strings, s)
	id := StrID(len(in.strings))
	in.ids[s] = id
	return id, nil
}

func (in *Interner) Len() int {
	return len(in.strings)
}

// InternedPath stores up to MaxComponentCount component ids inline.
type InternedPath [MaxComponentCount]StrID

// AddPath splits p into its normal components and interns each one. Paths
// with more than maxComponents components are rejected.
func (in *Interner) AddPath(p string, maxComponents int) (InternedPath, error) {
	var interned InternedPath

	maxComponents = min(maxComponents, MaxComponentCount)
	components := splitComponents(p)
	if len(components) > maxComponents {
		return interned, fmt.Errorf("%w: %q has %d components, only a max of %d are allowed",
			common.ErrTooManyComponents, p, len(components), maxComponents)
	}

	for i, component := range components {
		id, err := in.Add(component)
		if err != nil {
			return interned, err
		}
		interned[i] = id
	}
	return interned, nil
}

func splitComponents(p string) []string {
	p = Normalize(p)
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Len returns the number of components in the path.
func (ip InternedPath) Len() int {
	n := 0
	for _, id := range ip {
		if id == 0 {
			break
		}
		n++
	}
	return n
}

// Components resolves every component through the interner.
func (ip InternedPath) Components(in *Interner) []string {
	components := make([]string, 0, ip.Len())
	for _, id := range ip {
		if id == 0 {
			break
		}
		components = append(components, in.Get(id))
	}
	return components
}

// String joins the components with '/'.
func (ip InternedPath) String(in *Interner) string {
	var b strings.Builder
	for i, id := range ip {
		if id == 0 {
			break
		}
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(in.Get(id))
	}
	return b.String()
}

// HashedPathInterner maps a PathHash back to the path it was computed from.
type HashedPathInterner struct {
	interner      *Interner
	hashes        *BucketMap[InternedPath]
	maxComponents int
}

func NewHashedPathInterner(maxComponents, bucketCount int) *HashedPathInterner {
	if maxComponents <= 0 || maxComponents > MaxComponentCount {
		maxComponents = MaxComponentCount
	}
	return &HashedPathInterner{
		interner:      NewInterner(),
		hashes:        NewBucketMap[InternedPath](bucketCount),
		maxComponents: maxComponents,
	}
}

// Add records p under hash. The first spelling registered for a hash is kept.
func (h *HashedPathInterner) Add(hash PathHash, p string) error {
	if h.hashes.ContainsKey(hash) {
		return nil
	}
	interned, err := h.interner.AddPath(p, h.maxComponents)
	if err != nil {
		return err
	}
	h.hashes.Insert(hash, interned)
	slog.Debug("Interned path", "hash", hash.String(), "path", p)
	return nil
}

// TryGet reconstructs the path registered under hash.
func (h *HashedPathInterner) TryGet(hash PathHash) (string, bool) {
	interned, ok := h.hashes.Get(hash)
	if !ok {
		return "", false
	}
	return interned.String(h.interner), true
}

func (h *HashedPathInterner) ContainsKey(hash PathHash) bool {
	return h.hashes.ContainsKey(hash)
}

func (h *HashedPathInterner) Len() int {
	return h.hashes.Len()
}

// Paths returns every registered path in lexical order.
func (h *HashedPathInterner) Paths() []string {
	paths := make([]string, 0, h.hashes.Len())
	h.hashes.Scan(func(_ PathHash, interned InternedPath) bool {
		paths = append(paths, interned.String(h.interner))
		return true
	})
	sort.Strings(paths)
	return paths
}
