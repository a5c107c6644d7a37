package mods

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ZanzyTHEbar/mod-overlay/modfs/filesystem/common"
	"github.com/ZanzyTHEbar/mod-overlay/modfs/filesystem/interfaces"

	"github.com/dominikbraun/graph"
	"github.com/samber/lo"
)

// Mod is one source together with its manifest and its place in the load
// order. Rank 0 has the highest priority.
type Mod struct {
	Manifest Manifest
	FS       interfaces.VirtualFS
	Rank     int

	files []string
}

// DisplayName returns the manifest name, or the source's base name when the
// manifest has none.
func (m *Mod) DisplayName() string {
	if m.Manifest.Name != "" {
		return m.Manifest.Name
	}
	return filepath.Base(m.FS.Root())
}

// Identified reports whether the mod declares an id and can take part in
// dependency resolution.
func (m *Mod) Identified() bool {
	return m.Manifest.ID != ""
}

// ResolveLoadOrder sorts mods into load order and assigns their ranks.
//
// Identified mods come first, topologically sorted so that a mod is placed
// after every mod it depends on. A dependency therefore has a lower rank and
// wins path conflicts against its dependents. Mods that are otherwise
// unordered keep their discovery order. Standalone mods follow in discovery
// order.
//
// A missing dependency, a cycle, or an id declared twice is a
// ConfigurationError and no order is returned.
func ResolveLoadOrder(mods []*Mod) ([]*Mod, error) {
	identified := lo.Filter(mods, func(m *Mod, _ int) bool { return m.Identified() })
	standalone := lo.Filter(mods, func(m *Mod, _ int) bool { return !m.Identified() })
	for _, m := range standalone {
		if len(m.Manifest.Dependencies) > 0 {
			slog.Warn("Mod declares dependencies but has no id, its dependencies are ignored",
				"mod", m.DisplayName(), "dependencies", m.Manifest.Dependencies)
		}
	}

	g := graph.New(func(m *Mod) string { return m.Manifest.ID }, graph.Directed(), graph.PreventCycles())
	discovered := make(map[string]int, len(identified))

	for i, m := range identified {
		if err := g.AddVertex(m); err != nil {
			if errors.Is(err, graph.ErrVertexAlreadyExists) {
				return nil, &common.ConfigurationError{
					Mod: m.DisplayName(),
					Err: fmt.Errorf("%w: %s", common.ErrDuplicateModID, m.Manifest.ID),
				}
			}
			return nil, &common.ConfigurationError{Mod: m.DisplayName(), Err: err}
		}
		discovered[m.Manifest.ID] = i
	}

	for _, m := range identified {
		for _, dep := range m.Manifest.Dependencies {
			if _, ok := discovered[dep]; !ok {
				return nil, &common.ConfigurationError{Mod: m.DisplayName(), Dependency: dep, Err: common.ErrMissingDependency}
			}
		}
	}

	for _, m := range identified {
		for _, dep := range m.Manifest.Dependencies {
			err := g.AddEdge(dep, m.Manifest.ID)
			switch {
			case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
			case errors.Is(err, graph.ErrEdgeCreatesCycle):
				return nil, &common.ConfigurationError{Mod: m.DisplayName(), Dependency: dep, Err: common.ErrDependencyCycle}
			default:
				return nil, &common.ConfigurationError{Mod: m.DisplayName(), Dependency: dep, Err: err}
			}
		}
	}

	order, err := graph.StableTopologicalSort(g, func(a, b string) bool {
		return discovered[a] < discovered[b]
	})
	if err != nil {
		return nil, &common.ConfigurationError{Mod: "<load order>", Err: fmt.Errorf("%w: %v", common.ErrDependencyCycle, err)}
	}

	resolved := make([]*Mod, 0, len(mods))
	for _, id := range order {
		resolved = append(resolved, identified[discovered[id]])
	}
	resolved = append(resolved, standalone...)

	for rank, m := range resolved {
		m.Rank = rank
	}
	return resolved, nil
}
