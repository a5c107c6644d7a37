package mods

import (
	internal "github.com/ZanzyTHEbar/mod-overlay/modfs"
	"github.com/ZanzyTHEbar/mod-overlay/modfs/config"

	"github.com/rs/zerolog"
)

// SourceOption customizes how a single mod is opened.
type SourceOption func(*sourceOptions)

type sourceOptions struct {
	ignoreFile string
}

func newSourceOptions(opts []SourceOption) sourceOptions {
	o := sourceOptions{ignoreFile: internal.DefaultIgnoreFile}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// IgnoreFile sets the name of the gitignore-style file read from a mod's
// root. Patterns match without regard to case. An empty name disables
// ignore files.
func IgnoreFile(name string) SourceOption {
	return func(o *sourceOptions) {
		o.ignoreFile = name
	}
}

// Option customizes Manager construction.
type Option func(*managerOptions)

type managerOptions struct {
	logger        zerolog.Logger
	manifestName  string
	ignoreFile    string
	maxComponents int
	bucketCount   int
	workers       int
}

func newManagerOptions(opts []Option) managerOptions {
	o := managerOptions{
		logger:        internal.GetLogger(),
		manifestName:  internal.DefaultManifestName,
		ignoreFile:    internal.DefaultIgnoreFile,
		maxComponents: internal.DefaultMaxComponents,
		bucketCount:   internal.DefaultBucketCount,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used while building the index
func WithLogger(logger zerolog.Logger) Option {
	return func(o *managerOptions) {
		o.logger = logger
	}
}

// WithManifestName sets the manifest file looked up in every mod
func WithManifestName(name string) Option {
	return func(o *managerOptions) {
		o.manifestName = name
	}
}

// WithIgnoreFile sets the ignore file name used by discovered mods
func WithIgnoreFile(name string) Option {
	return func(o *managerOptions) {
		o.ignoreFile = name
	}
}

// WithMaxComponents bounds how deep a registered path may be
func WithMaxComponents(n int) Option {
	return func(o *managerOptions) {
		o.maxComponents = n
	}
}

// WithBucketCount sets the bucket count of the path interner table
func WithBucketCount(n int) Option {
	return func(o *managerOptions) {
		o.bucketCount = n
	}
}

// WithWorkers bounds how many mods are scanned in parallel; 0 means GOMAXPROCS
func WithWorkers(n int) Option {
	return func(o *managerOptions) {
		o.workers = n
	}
}

// FromConfig applies every non-zero value of the mods config section.
func FromConfig(cfg config.ModsConfig) Option {
	return func(o *managerOptions) {
		if cfg.ManifestName != "" {
			o.manifestName = cfg.ManifestName
		}
		if cfg.IgnoreFile != "" {
			o.ignoreFile = cfg.IgnoreFile
		}
		if cfg.MaxComponents > 0 {
			o.maxComponents = cfg.MaxComponents
		}
		if cfg.BucketCount > 0 {
			o.bucketCount = cfg.BucketCount
		}
		if cfg.Workers > 0 {
			o.workers = cfg.Workers
		}
	}
}
