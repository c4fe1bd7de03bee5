package adapter

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Ning0612/hfind/internal/domain"
)

// StatLister is the subset of Filesystem the glob helper needs
type StatLister interface {
	List(ctx context.Context, path string) ([]domain.Entry, error)
	Stat(ctx context.Context, path string) (domain.Entry, error)
}

// HasMeta reports whether p contains glob metacharacters
func HasMeta(p string) bool {
	return strings.ContainsAny(p, `*?[{\`)
}

// Glob expands pattern against a backend that can only list one level at a
// time, the way Hadoop's globStatus does. The static prefix of the pattern
// is stat'ed directly and every following path element is matched against
// the children of the previous level with doublestar. Wildcards never cross
// a "/" so "**" behaves like "*". Results keep listing order.
func Glob(ctx context.Context, fs StatLister, pattern string) ([]domain.Entry, error) {
	pattern = path.Clean("/" + pattern)

	if !HasMeta(pattern) {
		e, err := fs.Stat(ctx, pattern)
		if err != nil {
			return nil, err
		}
		return []domain.Entry{e}, nil
	}

	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", doublestar.ErrBadPattern, pattern)
	}

	base, rest := doublestar.SplitPattern(pattern)
	baseEntry, err := fs.Stat(ctx, base)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !baseEntry.IsDir {
		return nil, nil
	}

	var matches []domain.Entry
	if err := globLevel(ctx, fs, base, strings.Split(rest, "/"), &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func globLevel(ctx context.Context, fs StatLister, dir string, segments []string, matches *[]domain.Entry) error {
	children, err := fs.List(ctx, dir)
	if err != nil {
		return err
	}

	last := len(segments) == 1
	for _, child := range children {
		ok, err := doublestar.Match(segments[0], child.Name())
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if last {
			*matches = append(*matches, child)
			continue
		}
		if child.IsDir {
			if err := globLevel(ctx, fs, child.Path, segments[1:], matches); err != nil {
				return err
			}
		}
	}
	return nil
}
