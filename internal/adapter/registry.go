package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Ning0612/hfind/internal/domain"
)

// Registry resolves a root URI to the factory that serves its scheme
type Registry struct {
	factories []Factory
	// defaultScheme is used for bare paths without a scheme
	defaultScheme string
}

// NewRegistry creates a registry. Bare paths resolve to defaultScheme.
func NewRegistry(defaultScheme string, factories ...Factory) *Registry {
	return &Registry{
		factories:     factories,
		defaultScheme: defaultScheme,
	}
}

// Register adds a factory
func (r *Registry) Register(f Factory) {
	r.factories = append(r.factories, f)
}

// Open parses root and opens a filesystem for it. The returned string is
// the path component to glob on that filesystem.
func (r *Registry) Open(ctx context.Context, root string) (Filesystem, string, error) {
	u, err := ParseURI(root, r.defaultScheme)
	if err != nil {
		return nil, "", err
	}

	for _, f := range r.factories {
		if f.Supports(u.Scheme) {
			fs, err := f.Open(ctx, u)
			if err != nil {
				return nil, "", err
			}
			p := u.Path
			if p == "" {
				p = "/"
			}
			return fs, p, nil
		}
	}
	return nil, "", fmt.Errorf("%w: %q", domain.ErrUnsupportedScheme, u.Scheme)
}

// ParseURI parses root, treating strings without "scheme://" as bare paths.
// The path is kept verbatim so glob characters such as ? survive.
func ParseURI(root, defaultScheme string) (*url.URL, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty path", domain.ErrNotFound)
	}

	scheme, rest, ok := strings.Cut(root, "://")
	if ok && scheme != "" && !strings.ContainsAny(scheme, "/*?[{") {
		host, p, _ := strings.Cut(rest, "/")
		return &url.URL{Scheme: strings.ToLower(scheme), Host: host, Path: "/" + p}, nil
	}
	if p, ok := strings.CutPrefix(root, "file:"); ok {
		return &url.URL{Scheme: "file", Path: p}, nil
	}
	return &url.URL{Scheme: defaultScheme, Path: root}, nil
}
