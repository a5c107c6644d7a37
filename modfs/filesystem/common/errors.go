package common

import (
	"errors"
	"fmt"
)

// Common error types used across the overlay packages
var (
	// ErrNotFound is the only recoverable lookup failure. It is returned as a
	// value and never logged as an error.
	ErrNotFound = errors.New("the requested file is not found in the virtual filesystem")

	ErrTooManyComponents  = errors.New("path has too many components")
	ErrInternerFull       = errors.New("string interner is full")
	ErrPathConflict       = errors.New("path is registered both as a file and as a directory")
	ErrMissingDependency  = errors.New("dependency is missing")
	ErrDependencyCycle    = errors.New("dependency cycle")
	ErrDuplicateModID     = errors.New("mod id is declared more than once")
	ErrMalformedManifest  = errors.New("configuration file is not valid YAML")
	ErrUnsupportedArchive = errors.New("the compression or format of this file is unsupported")
)

// ConfigurationError reports a fatal problem with a mod's manifest or its
// place in the dependency graph.
type ConfigurationError struct {
	Mod        string // display name of the offending mod
	Dependency string // dependency id involved, if any
	Err        error
}

func (e *ConfigurationError) Error() string {
	switch {
	case errors.Is(e.Err, ErrMissingDependency):
		return fmt.Sprintf("mod '%s' requires mod dependency '%s' but it is missing", e.Mod, e.Dependency)
	case errors.Is(e.Err, ErrDependencyCycle):
		return fmt.Sprintf("mod '%s' and its dependency '%s' form a dependency cycle", e.Mod, e.Dependency)
	case e.Dependency != "":
		return fmt.Sprintf("mod '%s' (dependency '%s'): %v", e.Mod, e.Dependency, e.Err)
	default:
		return fmt.Sprintf("mod '%s' ran into a configuration error: %v", e.Mod, e.Err)
	}
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// SourceOpenError reports a mod directory or archive that could not be opened.
type SourceOpenError struct {
	Path   string
	Reason string
	Err    error
}

func (e *SourceOpenError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("could not read mod '%s': %v", e.Path, e.Err)
	}
	return fmt.Sprintf("could not read mod '%s' because %s", e.Path, e.Reason)
}

func (e *SourceOpenError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a not-found lookup result.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
