package interfaces

// VirtualFS is one mod: a directory or an archive contributing files to the
// overlay. Relative paths use forward slashes and are matched without regard
// to case.
type VirtualFS interface {
	// Root returns the on-disk location of the mod (directory or archive file).
	Root() string

	// Discover lists the relative paths of every regular file that has an
	// extension. Directories and extensionless files are not listed.
	Discover() ([]string, error)

	// Load reads a file. Missing files return an error wrapping
	// common.ErrNotFound.
	Load(relativePath string) ([]byte, error)

	// LastModified returns the file's modification time in Unix seconds.
	LastModified(relativePath string) (int64, error)
}
