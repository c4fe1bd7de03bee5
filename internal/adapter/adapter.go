package adapter

import (
	"context"
	"net/url"

	"github.com/Ning0612/hfind/internal/domain"
)

// Filesystem defines the metadata operations a find query needs from a
// storage backend. Implementations map backend failures to domain errors
// (domain.ErrNotFound, domain.ErrPermissionDenied, ...) and return paths
// as absolute, slash-separated strings.
type Filesystem interface {
	// Glob expands a possibly pattern-bearing path into its matching entries
	// Returns domain.ErrNotFound if a literal path doesn't exist
	// A pattern without matches returns an empty slice
	Glob(ctx context.Context, pattern string) ([]domain.Entry, error)

	// List returns the direct children of a directory
	// Returns domain.ErrNotDirectory if path is a file
	List(ctx context.Context, path string) ([]domain.Entry, error)

	// Stat returns metadata for a single path
	// Returns domain.ErrNotFound if path doesn't exist
	Stat(ctx context.Context, path string) (domain.Entry, error)

	// Home returns the invoking user's home path on this backend
	Home(ctx context.Context) (string, error)

	// Close releases any resources held by the adapter
	Close() error
}

// ReplicationDefaulter is implemented by backends that know the cluster's
// default replication factor
type ReplicationDefaulter interface {
	DefaultReplication() int
}

// WorkingDirer is implemented by backends whose relative paths resolve
// against a working directory other than Home
type WorkingDirer interface {
	WorkingDir() (string, error)
}

// Factory creates filesystems for the URI schemes it supports
type Factory interface {
	// Open returns a filesystem able to serve paths of uri
	Open(ctx context.Context, uri *url.URL) (Filesystem, error)

	// Supports returns true if this factory can handle the scheme
	Supports(scheme string) bool
}
