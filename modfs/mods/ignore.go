package mods

import (
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// ignoreMatcher applies a gitignore-style file to relative paths without
// regard to case, like every other path lookup in the overlay.
type ignoreMatcher struct {
	patterns *ignore.GitIgnore
}

func compileIgnore(data []byte) *ignoreMatcher {
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.ToLower(line)
	}
	return &ignoreMatcher{patterns: ignore.CompileIgnoreLines(lines...)}
}

// Matches reports whether rel is hidden. A nil matcher hides nothing.
func (m *ignoreMatcher) Matches(rel string) bool {
	if m == nil {
		return false
	}
	return m.patterns.MatchesPath(strings.ToLower(rel))
}
