package mods

import (
	"cmp"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ZanzyTHEbar/mod-overlay/modfs/filesystem/common"
	"github.com/ZanzyTHEbar/mod-overlay/modfs/filesystem/interfaces"
	"github.com/ZanzyTHEbar/mod-overlay/modfs/indexing"
	"github.com/ZanzyTHEbar/mod-overlay/modfs/trees"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/iter"
)

// Manager is the read-only overlay index over every loaded mod. It is built
// once and safe for concurrent use afterwards.
type Manager struct {
	logger     zerolog.Logger
	generation uuid.UUID

	mods []*Mod

	paths []trees.ResourcePath  // sorted by hash
	dirs  []trees.DirectoryInfo // sorted by hash

	names      *indexing.HashedPathInterner
	lookup     map[indexing.PathHash][]int // path -> ranks of the mods providing it
	prefixes   *trees.PatriciaPathIndex
	extensions *indexing.ExtensionBitmaps
}

// FileLocation is one variant of a file and the root of the mod it came from.
type FileLocation struct {
	Data []byte
	Root string
}

// ModInfo describes a loaded mod.
type ModInfo struct {
	Rank         int
	ID           string
	Name         string
	Root         string
	Dependencies []string
	Files        int
}

// Stats summarizes the index.
type Stats struct {
	Sources     int
	Files       int
	Directories int
	Prefixes    trees.PathIndexStats
}

// Load discovers the mods under root and builds a Manager over them. The
// mods are closed again if the build fails.
func Load(root string, opts ...Option) (*Manager, error) {
	o := newManagerOptions(opts)

	sources, err := DiscoverSources(root, IgnoreFile(o.ignoreFile))
	if err != nil {
		return nil, err
	}

	m, err := NewManager(sources, opts...)
	if err != nil {
		CloseSources(sources)
		return nil, err
	}
	return m, nil
}

// NewManager reads the manifest and file list of every source, resolves the
// load order and builds the index. sources must be in discovery order.
func NewManager(sources []interfaces.VirtualFS, opts ...Option) (*Manager, error) {
	o := newManagerOptions(opts)

	scanner := iter.Mapper[interfaces.VirtualFS, *Mod]{MaxGoroutines: o.workers}
	scanned, err := scanner.MapErr(sources, func(source *interfaces.VirtualFS) (*Mod, error) {
		return scanMod(*source, o.manifestName)
	})
	if err != nil {
		return nil, err
	}

	ordered, err := ResolveLoadOrder(scanned)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		logger:     o.logger,
		generation: uuid.New(),
		mods:       ordered,
		names:      indexing.NewHashedPathInterner(o.maxComponents, o.bucketCount),
		lookup:     make(map[indexing.PathHash][]int),
		prefixes:   trees.NewPatriciaPathIndex(),
		extensions: indexing.NewExtensionBitmaps(),
	}
	if err := m.build(); err != nil {
		return nil, err
	}

	m.logger.Info().
		Int("sources", len(m.mods)).
		Int("files", len(m.lookup)).
		Int("directories", len(m.dirs)).
		Str("generation", m.generation.String()).
		Msg("Mod overlay ready")
	return m, nil
}

func scanMod(source interfaces.VirtualFS, manifestName string) (*Mod, error) {
	manifest, err := ReadManifest(source, manifestName)
	if err != nil {
		return nil, err
	}

	files, err := source.Discover()
	if err != nil {
		return nil, err
	}
	for i, f := range files {
		files[i] = indexing.Normalize(f)
	}
	slices.Sort(files)

	return &Mod{Manifest: manifest, FS: source, files: files}, nil
}

// build registers every file of every mod in rank order, so the first
// spelling and the first lookup entry of a path belong to the winning mod.
func (m *Manager) build() error {
	builder := trees.NewFilesystemBuilder()
	if err := m.names.Add(indexing.RootHash, ""); err != nil {
		return err
	}

	for _, mod := range m.mods {
		for _, rel := range mod.files {
			if err := builder.AddFile(rel); err != nil {
				if errors.Is(err, common.ErrPathConflict) {
					m.logger.Warn().Err(err).Str("mod", mod.DisplayName()).Str("path", rel).
						Msg("Skipping path that another mod registered as a different kind of entry")
					continue
				}
				return &common.ConfigurationError{Mod: mod.DisplayName(), Err: err}
			}
			if err := m.internWithParents(rel); err != nil {
				return &common.ConfigurationError{Mod: mod.DisplayName(), Err: fmt.Errorf("%s: %w", rel, err)}
			}

			h := indexing.Hash(rel)
			ranks := m.lookup[h]
			if len(ranks) == 0 || ranks[len(ranks)-1] != mod.Rank {
				m.lookup[h] = append(ranks, mod.Rank)
			}
			m.prefixes.Insert(rel)
		}

		m.logger.Info().
			Int("rank", mod.Rank).
			Str("id", mod.Manifest.ID).
			Str("name", mod.DisplayName()).
			Str("root", mod.FS.Root()).
			Int("files", len(mod.files)).
			Msg("Loaded mod")
	}

	m.paths, m.dirs = builder.Finish()
	for ordinal, rp := range m.paths {
		if rp.Ext != indexing.NoExtension {
			m.extensions.AddExt(rp.Ext, uint32(ordinal))
		}
	}
	return nil
}

// internWithParents records the spelling of rel and of every ancestor that
// has none yet.
func (m *Manager) internWithParents(rel string) error {
	for p := rel; p != ""; p = indexing.Parent(p) {
		h := indexing.Hash(p)
		if m.names.ContainsKey(h) {
			return nil
		}
		if err := m.names.Add(h, p); err != nil {
			return err
		}
	}
	return nil
}

func notFound(what string, key any) error {
	return fmt.Errorf("%w: %s %v", common.ErrNotFound, what, key)
}

// Generation identifies this build of the index. A rebuilt Manager has a new one.
func (m *Manager) Generation() uuid.UUID {
	return m.generation
}

// Mods returns the loaded mods in rank order.
func (m *Manager) Mods() []ModInfo {
	return lo.Map(m.mods, func(mod *Mod, _ int) ModInfo {
		return ModInfo{
			Rank:         mod.Rank,
			ID:           mod.Manifest.ID,
			Name:         mod.DisplayName(),
			Root:         mod.FS.Root(),
			Dependencies: slices.Clone(mod.Manifest.Dependencies),
			Files:        len(mod.files),
		}
	})
}

func (m *Manager) Stats() Stats {
	return Stats{
		Sources:     len(m.mods),
		Files:       len(m.lookup),
		Directories: len(m.dirs),
		Prefixes:    m.prefixes.GetStats(),
	}
}

// Close releases the mods holding open handles.
func (m *Manager) Close() error {
	return CloseSources(lo.Map(m.mods, func(mod *Mod, _ int) interfaces.VirtualFS { return mod.FS }))
}

// GetPathByHash finds the entry of a file or directory.
func (m *Manager) GetPathByHash(hash indexing.PathHash) (*trees.ResourcePath, error) {
	i, ok := slices.BinarySearchFunc(m.paths, hash, func(rp trees.ResourcePath, h indexing.PathHash) int {
		return cmp.Compare(rp.Path, h)
	})
	if !ok {
		return nil, notFound("path", hash)
	}
	return &m.paths[i], nil
}

// GetDirectoryByHash finds a directory. The returned value must not be modified.
func (m *Manager) GetDirectoryByHash(hash indexing.PathHash) (*trees.DirectoryInfo, error) {
	i, ok := slices.BinarySearchFunc(m.dirs, hash, func(d trees.DirectoryInfo, h indexing.PathHash) int {
		return cmp.Compare(d.Path, h)
	})
	if !ok {
		return nil, notFound("directory", hash)
	}
	return &m.dirs[i], nil
}

// GetDirectory finds a directory by path; "" is the root.
func (m *Manager) GetDirectory(p string) (*trees.DirectoryInfo, error) {
	d, err := m.GetDirectoryByHash(indexing.Hash(p))
	if err != nil {
		return nil, notFound("directory", p)
	}
	return d, nil
}

// GetParentDirectory returns the directory containing p. The root is its own parent.
func (m *Manager) GetParentDirectory(p string) (*trees.DirectoryInfo, error) {
	rp, err := m.GetPathByHash(indexing.Hash(p))
	if err != nil {
		return nil, notFound("path", p)
	}
	return m.GetDirectoryByHash(rp.Parent)
}

func (m *Manager) namesOf(hashes []indexing.PathHash) []string {
	names := make([]string, 0, len(hashes))
	for _, h := range hashes {
		if name, ok := m.names.TryGet(h); ok {
			names = append(names, name)
		}
	}
	return names
}

// GetFilesInDirectory lists the files directly inside dir, in hash order.
func (m *Manager) GetFilesInDirectory(dir string) ([]string, error) {
	d, err := m.GetDirectory(dir)
	if err != nil {
		return nil, err
	}
	return m.namesOf(d.FileHashes), nil
}

// GetFilesInDirectoryAndSubdir lists every file below dir. Directories are
// visited in pre-order with an explicit stack.
func (m *Manager) GetFilesInDirectoryAndSubdir(dir string) ([]string, error) {
	start, err := m.GetDirectory(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	pending := []*trees.DirectoryInfo{start}
	for len(pending) > 0 {
		d := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		files = append(files, m.namesOf(d.FileHashes)...)
		for i := len(d.ChildDirHashes) - 1; i >= 0; i-- {
			child, err := m.GetDirectoryByHash(d.ChildDirHashes[i])
			if err != nil {
				return nil, err
			}
			pending = append(pending, child)
		}
	}
	return files, nil
}

// Exists reports whether any mod provides the file p.
func (m *Manager) Exists(p string) bool {
	_, ok := m.lookup[indexing.Hash(p)]
	return ok
}

// providers returns the canonical spelling of p and the mods providing it,
// highest priority first.
func (m *Manager) providers(p string) (string, []*Mod, error) {
	h := indexing.Hash(p)
	ranks, ok := m.lookup[h]
	if !ok {
		return "", nil, notFound("file", p)
	}
	name, ok := m.names.TryGet(h)
	if !ok {
		return "", nil, notFound("file", p)
	}
	return name, lo.Map(ranks, func(rank int, _ int) *Mod { return m.mods[rank] }), nil
}

// GetFile reads p from the highest-priority mod that provides it.
func (m *Manager) GetFile(p string) ([]byte, error) {
	name, providers, err := m.providers(p)
	if err != nil {
		return nil, err
	}
	return providers[0].FS.Load(name)
}

// GetFiles reads every variant of p, highest priority first. To apply them
// base-to-override, iterate the result in reverse.
func (m *Manager) GetFiles(p string) ([][]byte, error) {
	locations, err := m.GetFilesWithLocations(p)
	if err != nil {
		return nil, err
	}
	return lo.Map(locations, func(l FileLocation, _ int) []byte { return l.Data }), nil
}

// GetFilesWithLocations is GetFiles with the root of the mod each variant
// came from.
func (m *Manager) GetFilesWithLocations(p string) ([]FileLocation, error) {
	name, providers, err := m.providers(p)
	if err != nil {
		return nil, err
	}

	locations := make([]FileLocation, 0, len(providers))
	for _, mod := range providers {
		data, err := mod.FS.Load(name)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s from %s: %w", name, mod.FS.Root(), err)
		}
		locations = append(locations, FileLocation{Data: data, Root: mod.FS.Root()})
	}
	return locations, nil
}

// GetLastModified returns the modification time, in Unix seconds, of p in
// the highest-priority mod.
func (m *Manager) GetLastModified(p string) (int64, error) {
	name, providers, err := m.providers(p)
	if err != nil {
		return 0, err
	}
	return providers[0].FS.LastModified(name)
}

// GetFullPath returns the canonical spelling of a file or directory; "" is
// the root.
func (m *Manager) GetFullPath(p string) (string, error) {
	name, err := m.GetFullPathByHash(indexing.Hash(p))
	if err != nil {
		return "", notFound("path", p)
	}
	return name, nil
}

// GetFullPathByHash is GetFullPath for a precomputed hash.
func (m *Manager) GetFullPathByHash(hash indexing.PathHash) (string, error) {
	name, ok := m.names.TryGet(hash)
	if !ok {
		return "", notFound("path", hash)
	}
	return name, nil
}

// GetAbsoluteFullPath returns where p lives on disk in the highest-priority
// mod. Paths inside archives are joined to the archive's path.
func (m *Manager) GetAbsoluteFullPath(p string) (string, error) {
	name, providers, err := m.providers(p)
	if err != nil {
		return "", err
	}

	winner := providers[0].FS
	if dir, ok := winner.(*DirectoryMod); ok {
		if full, err := dir.resolve(name); err == nil {
			return filepath.Abs(full)
		}
	}
	return filepath.Abs(filepath.Join(winner.Root(), filepath.FromSlash(name)))
}

// GetLocations returns every file of the overlay in lexical order.
func (m *Manager) GetLocations() []string {
	locations := make([]string, 0, len(m.lookup))
	for h := range m.lookup {
		if name, ok := m.names.TryGet(h); ok {
			locations = append(locations, name)
		}
	}
	slices.Sort(locations)
	return locations
}

// GetLocationsByMod returns the files each mod contributes, keyed by rank.
func (m *Manager) GetLocationsByMod() map[int][]string {
	return lo.SliceToMap(m.mods, func(mod *Mod) (int, []string) {
		return mod.Rank, slices.Clone(mod.files)
	})
}

// FindLocations returns every file whose path starts with prefix, ignoring case.
func (m *Manager) FindLocations(prefix string) []string {
	return m.prefixes.PrefixLookup(prefix)
}

// GetFilesWithExtension returns every file having one of exts, in lexical
// order. Extensions may be given with or without the leading dot.
func (m *Manager) GetFilesWithExtension(exts ...string) []string {
	hashes := lo.Map(exts, func(ext string, _ int) indexing.PathHash {
		return indexing.Hash(strings.TrimPrefix(ext, "."))
	})

	ordinals := m.extensions.OrExt(hashes...)
	files := make([]string, 0, ordinals.GetCardinality())
	it := ordinals.Iterator()
	for it.HasNext() {
		if name, ok := m.names.TryGet(m.paths[it.Next()].Path); ok {
			files = append(files, name)
		}
	}
	slices.Sort(files)
	return files
}
