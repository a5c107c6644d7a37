package mods

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/mod-overlay/modfs/filesystem/common"
	"github.com/ZanzyTHEbar/mod-overlay/modfs/filesystem/interfaces"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Manifest is the optional config.yaml at the root of a mod. A mod without
// an id is standalone.
type Manifest struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Author       string   `yaml:"author"`
	Dependencies []string `yaml:"dependencies"`
	Repository   *string  `yaml:"repository,omitempty"`
}

// ReadManifest loads and decodes the manifest of vfs. A manifest that cannot
// be read yields an empty Manifest; one that exists but does not decode is a
// ConfigurationError naming the mod.
func ReadManifest(vfs interfaces.VirtualFS, manifestName string) (Manifest, error) {
	data, err := vfs.Load(manifestName)
	if err != nil {
		if !common.IsNotFound(err) {
			slog.Warn("Could not read mod manifest, treating mod as standalone", "mod", vfs.Root(), "error", err)
		}
		return Manifest{}, nil
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, &common.ConfigurationError{
			Mod: filepath.Base(vfs.Root()),
			Err: fmt.Errorf("%w: %v", common.ErrMalformedManifest, err),
		}
	}

	m.ID = strings.TrimSpace(m.ID)
	m.Dependencies = lo.Uniq(lo.FilterMap(m.Dependencies, func(dep string, _ int) (string, bool) {
		dep = strings.TrimSpace(dep)
		return dep, dep != ""
	}))
	return m, nil
}
