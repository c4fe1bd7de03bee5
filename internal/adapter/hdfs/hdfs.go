package hdfs

import (
	"context"
	"errors"
	"os"
	"path"
	"syscall"

	"github.com/Ning0612/hfind/internal/adapter"
	"github.com/Ning0612/hfind/internal/domain"
)

// Scheme is the URI scheme served by this adapter
const Scheme = "hdfs"

// stickyBit is the raw HDFS permission bit; the client passes the
// namenode's 12-bit permission through os.FileMode unchanged.
const stickyBit os.FileMode = 01000

// client is the part of *hdfs.Client the adapter uses
type client interface {
	ReadDir(dirname string) ([]os.FileInfo, error)
	Stat(name string) (os.FileInfo, error)
	Close() error
}

// Adapter implements adapter.Filesystem on top of the native HDFS RPC client
type Adapter struct {
	client      client
	authority   string // host[:port] of the namenode or nameservice, used in URIs
	user        string
	replication int
}

func newAdapter(c client, authority, user string, replication int) *Adapter {
	return &Adapter{
		client:      c,
		authority:   authority,
		user:        user,
		replication: replication,
	}
}

// Glob implements adapter.Filesystem
func (a *Adapter) Glob(ctx context.Context, pattern string) ([]domain.Entry, error) {
	return adapter.Glob(ctx, a, pattern)
}

// List returns the directory listing in namenode order (sorted by name)
func (a *Adapter) List(ctx context.Context, p string) ([]domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := a.client.ReadDir(p)
	if err != nil {
		return nil, mapError(err)
	}

	result := make([]domain.Entry, 0, len(infos))
	for _, info := range infos {
		result = append(result, a.entryFromInfo(path.Join(p, info.Name()), info))
	}
	return result, nil
}

// Stat returns metadata for a single path
func (a *Adapter) Stat(ctx context.Context, p string) (domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return domain.Entry{}, err
	}

	p = path.Clean(p)
	info, err := a.client.Stat(p)
	if err != nil {
		return domain.Entry{}, mapError(err)
	}
	return a.entryFromInfo(p, info), nil
}

// Home returns /user/<name>, the HDFS convention for home directories
func (a *Adapter) Home(ctx context.Context) (string, error) {
	if a.user == "" {
		return "", errors.New("hdfs user is unknown")
	}
	return "/user/" + a.user, nil
}

// DefaultReplication returns dfs.replication from the Hadoop configuration
func (a *Adapter) DefaultReplication() int {
	return a.replication
}

// Close releases the namenode connection
func (a *Adapter) Close() error {
	return a.client.Close()
}

// entryFromInfo converts a client FileInfo to domain.Entry. Owner, group
// and replication come from the namenode status when available.
func (a *Adapter) entryFromInfo(p string, info os.FileInfo) domain.Entry {
	mode := info.Mode()
	e := domain.Entry{
		Path:    p,
		URI:     Scheme + "://" + a.authority + p,
		Scheme:  Scheme,
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
		Perm:    mode.Perm(),
	}
	if mode&stickyBit != 0 {
		e.Perm |= os.ModeSticky
	}

	if owned, ok := info.(interface {
		Owner() string
		OwnerGroup() string
	}); ok {
		e.Owner = owned.Owner()
		e.Group = owned.OwnerGroup()
	}

	if !e.IsDir {
		e.Size = info.Size()
		if st, ok := info.Sys().(interface{ GetBlockReplication() uint32 }); ok {
			e.Replication = int(st.GetBlockReplication())
		}
	}
	return e
}

// mapError converts client errors to domain errors
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

var (
	_ adapter.Filesystem           = (*Adapter)(nil)
	_ adapter.ReplicationDefaulter = (*Adapter)(nil)
)
