package testutil

import (
	"context"
	"path"
	"sync"

	"github.com/Ning0612/hfind/internal/adapter"
	"github.com/Ning0612/hfind/internal/domain"
)

// MemFS is an in-memory adapter.Filesystem for tests. Children are listed
// in insertion order.
type MemFS struct {
	mu       sync.Mutex
	entries  map[string]domain.Entry
	children map[string][]string
	failures map[string]error

	// HomeDir is returned by Home
	HomeDir string

	// Replication is returned by DefaultReplication
	Replication int

	// Listed records every path passed to List
	Listed []string
}

// NewMemFS creates an empty tree containing only "/"
func NewMemFS() *MemFS {
	return &MemFS{
		entries:     map[string]domain.Entry{"/": {Path: "/", URI: "mem:///", Scheme: "mem", IsDir: true, Perm: 0755}},
		children:    map[string][]string{},
		failures:    map[string]error{},
		HomeDir:     "/user/test",
		Replication: 3,
	}
}

// Add inserts e, creating missing parent directories. URI and Scheme are
// filled in when empty.
func (m *MemFS) Add(e domain.Entry) *MemFS {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.add(e)
	return m
}

// Dir adds a directory
func (m *MemFS) Dir(p string) *MemFS {
	return m.Add(domain.Entry{Path: p, IsDir: true, Perm: 0755})
}

// File adds a file of the given size
func (m *MemFS) File(p string, size int64) *MemFS {
	return m.Add(domain.Entry{Path: p, Size: size, Replication: 3, Perm: 0644})
}

// FailList makes List(p) return err
func (m *MemFS) FailList(p string, err error) *MemFS {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[p] = err
	return m
}

func (m *MemFS) add(e domain.Entry) {
	if e.Scheme == "" {
		e.Scheme = "mem"
	}
	if e.URI == "" {
		e.URI = e.Scheme + "://" + e.Path
	}

	parent := path.Dir(e.Path)
	if _, ok := m.entries[parent]; !ok {
		m.add(domain.Entry{Path: parent, Scheme: e.Scheme, IsDir: true, Perm: 0755})
	}
	if _, exists := m.entries[e.Path]; !exists {
		m.children[parent] = append(m.children[parent], e.Path)
	}
	m.entries[e.Path] = e
}

// Glob implements adapter.Filesystem
func (m *MemFS) Glob(ctx context.Context, pattern string) ([]domain.Entry, error) {
	return adapter.Glob(ctx, m, pattern)
}

// List implements adapter.Filesystem
func (m *MemFS) List(ctx context.Context, p string) ([]domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Listed = append(m.Listed, p)
	if err, ok := m.failures[p]; ok {
		return nil, err
	}
	e, ok := m.entries[p]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !e.IsDir {
		return nil, domain.ErrNotDirectory
	}

	result := make([]domain.Entry, 0, len(m.children[p]))
	for _, c := range m.children[p] {
		result = append(result, m.entries[c])
	}
	return result, nil
}

// Stat implements adapter.Filesystem
func (m *MemFS) Stat(ctx context.Context, p string) (domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[path.Clean(p)]
	if !ok {
		return domain.Entry{}, domain.ErrNotFound
	}
	return e, nil
}

// Home implements adapter.Filesystem
func (m *MemFS) Home(ctx context.Context) (string, error) {
	return m.HomeDir, nil
}

// DefaultReplication implements adapter.ReplicationDefaulter
func (m *MemFS) DefaultReplication() int {
	return m.Replication
}

// Close implements adapter.Filesystem
func (m *MemFS) Close() error {
	return nil
}

var (
	_ adapter.Filesystem           = (*MemFS)(nil)
	_ adapter.ReplicationDefaulter = (*MemFS)(nil)
)
