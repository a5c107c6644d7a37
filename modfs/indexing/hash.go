package indexing

import (
	"fmt"
	"path"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// PathHash identifies a relative path. It is computed from the lower-cased,
// forward-slash normalized path, so paths differing only by case share a hash.
// Collisions between distinct paths are not detected.
type PathHash uint32

// NoExtension is the extension hash of directories and extensionless names.
const NoExtension PathHash = 0xFFFF_FFFF

// RootHash is the hash of the overlay root (the empty path).
var RootHash = Hash("")

func (h PathHash) String() string {
	return fmt.Sprintf("%#08x", uint32(h))
}

// Hash returns the PathHash of a relative path.
func Hash(p string) PathHash {
	return PathHash(xxhash.Sum64String(strings.ToLower(Normalize(p))))
}

// Normalize converts p to the canonical relative form: forward slashes,
// no leading or trailing slash, "." and ".." resolved. The root is "".
func Normalize(p string) string {
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}

// Parent returns the normalized parent of p; the parent of a top-level entry
// is the root "".
func Parent(p string) string {
	p = Normalize(p)
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return ""
	}
	return p[:i]
}

// Base returns the last component of p.
func Base(p string) string {
	p = Normalize(p)
	return p[strings.LastIndexByte(p, '/')+1:]
}

// Extension returns the extension of the last component of p without the
// leading dot, or "" when it has none. Dotfiles such as ".hidden" have none.
// A trailing dot, as in "b.", is an empty extension; see HasExtension.
func Extension(p string) string {
	ext, _ := splitExtension(p)
	return ext
}

// HasExtension reports whether the last component of p has an extension,
// counting the empty one after a trailing dot.
func HasExtension(p string) bool {
	_, ok := splitExtension(p)
	return ok
}

func splitExtension(p string) (string, bool) {
	base := Base(p)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return "", false
	}
	return base[i+1:], true
}
