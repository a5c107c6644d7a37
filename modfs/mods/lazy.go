package mods

import (
	"sync"

	internal "github.com/ZanzyTHEbar/mod-overlay/modfs"
	"github.com/ZanzyTHEbar/mod-overlay/modfs/config"
)

var loadDefault = sync.OnceValues(func() (*Manager, error) {
	cfg := config.AppConfig
	if cfg.Mods.Root == "" {
		loaded, err := config.LoadConfig("")
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	logger := internal.NewLogger(cfg.Log.Level, cfg.Log.Pretty)
	return Load(cfg.Mods.Root, WithLogger(logger), FromConfig(cfg.Mods))
})

// Default returns the process-wide Manager, built from config.AppConfig on
// first use. Every caller receives the same Manager and error; a failed build
// is not retried.
func Default() (*Manager, error) {
	return loadDefault()
}
