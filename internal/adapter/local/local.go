package local

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"syscall"

	"github.com/Ning0612/hfind/internal/adapter"
	"github.com/Ning0612/hfind/internal/domain"
)

// Scheme is the URI scheme served by this adapter
const Scheme = "file"

// Adapter implements adapter.Filesystem for the local filesystem.
// Paths are absolute and slash-separated; symbolic links are reported
// as files and never followed.
type Adapter struct {
	owners *ownerCache
}

// New creates a new local filesystem adapter
func New() *Adapter {
	return &Adapter{owners: newOwnerCache()}
}

// Glob implements adapter.Filesystem
func (a *Adapter) Glob(ctx context.Context, pattern string) ([]domain.Entry, error) {
	return adapter.Glob(ctx, a, pattern)
}

// List returns the children of a directory sorted by name
func (a *Adapter) List(ctx context.Context, p string) ([]domain.Entry, error) {
	entries, err := os.ReadDir(filepath.FromSlash(p))
	if err != nil {
		return nil, mapError(err)
	}

	result := make([]domain.Entry, 0, len(entries))
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		info, err := entry.Info()
		if err != nil {
			continue // removed between readdir and lstat
		}
		result = append(result, a.entryFromOS(path.Join(p, entry.Name()), info))
	}

	return result, nil
}

// Stat returns metadata for a single path
func (a *Adapter) Stat(ctx context.Context, p string) (domain.Entry, error) {
	info, err := os.Lstat(filepath.FromSlash(p))
	if err != nil {
		return domain.Entry{}, mapError(err)
	}
	return a.entryFromOS(path.Clean(p), info), nil
}

// Home returns the user's home directory
func (a *Adapter) Home(ctx context.Context) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(home), nil
}

// WorkingDir resolves relative roots against the process working directory
func (a *Adapter) WorkingDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(wd), nil
}

// DefaultReplication is 1: a local file has exactly one copy
func (a *Adapter) DefaultReplication() int {
	return 1
}

// Close releases any resources (no-op for local adapter)
func (a *Adapter) Close() error {
	return nil
}

// entryFromOS converts os.FileInfo to domain.Entry
func (a *Adapter) entryFromOS(p string, info os.FileInfo) domain.Entry {
	p = filepath.ToSlash(p)
	owner, group := a.owners.lookup(info)

	e := domain.Entry{
		Path:    p,
		URI:     Scheme + ":" + p,
		Scheme:  Scheme,
		IsDir:   info.IsDir(),
		Owner:   owner,
		Group:   group,
		ModTime: info.ModTime(),
		Perm:    info.Mode().Perm() | info.Mode()&os.ModeSticky,
	}
	if !e.IsDir {
		e.Size = info.Size()
		e.Replication = 1
	}
	return e
}

// mapError converts OS errors to domain errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, os.ErrNotExist):
		return domain.ErrNotFound
	case errors.Is(err, os.ErrPermission):
		return domain.ErrPermissionDenied
	case errors.Is(err, syscall.ENOTDIR):
		return domain.ErrNotDirectory
	}
	return err
}

// Factory opens the local adapter for file: URIs
type Factory struct{}

// Open implements adapter.Factory
func (Factory) Open(ctx context.Context, uri *url.URL) (adapter.Filesystem, error) {
	return New(), nil
}

// Supports implements adapter.Factory
func (Factory) Supports(scheme string) bool {
	return scheme == Scheme
}

var (
	_ adapter.Filesystem           = (*Adapter)(nil)
	_ adapter.ReplicationDefaulter = (*Adapter)(nil)
	_ adapter.WorkingDirer         = (*Adapter)(nil)
	_ adapter.Factory              = Factory{}
)
