// Package predicate compiles a query into the per-entry filter conjunction.
package predicate

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/Ning0612/hfind/internal/core/magnitude"
	"github.com/Ning0612/hfind/internal/core/temporal"
	"github.com/Ning0612/hfind/internal/domain"
)

// Set is the compiled conjunction of every active filter of a query.
// Nil fields are inactive and always pass.
type Set struct {
	typ         domain.TypeFilter
	owner       string
	group       string
	size        *domain.Comparator
	replication *domain.Comparator
	mtime       *temporal.Filter
	name        *regexp.Regexp
}

// Options tunes compilation
type Options struct {
	// Now is the reference time for relative age filters
	Now time.Time

	// Location is used to interpret --before/--after dates (default time.Local)
	Location *time.Location

	// DefaultReplication backs the under-replicated shortcut
	DefaultReplication int
}

// New compiles q. All parse errors of the query surface here, before any
// traversal starts.
func New(q domain.Query, opts Options) (*Set, error) {
	if !q.Type.IsValid() {
		return nil, fmt.Errorf("%w: %q (want f or d)", domain.ErrInvalidType, q.Type)
	}

	s := &Set{
		typ:   q.Type,
		owner: q.Owner,
		group: q.Group,
	}

	if q.Size != "" {
		cmp, err := magnitude.Parse(q.Size)
		if err != nil {
			return nil, fmt.Errorf("--size: %w", err)
		}
		s.size = &cmp
	}

	repl := q.Replication
	if q.UnderReplicated {
		repl = "-" + strconv.Itoa(opts.DefaultReplication)
	}
	if repl != "" {
		cmp, err := magnitude.ParseCount(repl)
		if err != nil {
			return nil, fmt.Errorf("--repl: %w", err)
		}
		s.replication = &cmp
		// directories carry no replication factor
		s.typ = domain.TypeFile
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	mtime, err := temporal.Resolve(q, now, opts.Location)
	if err != nil {
		return nil, err
	}
	s.mtime = mtime

	if q.Name != "" {
		re, err := regexp.Compile(q.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPattern, err)
		}
		s.name = re
	}

	return s, nil
}

// Match reports whether e passes every active filter. displayPath is the
// string the name pattern is searched in.
func (s *Set) Match(e domain.Entry, displayPath string) bool {
	if !s.typ.Matches(e.IsDir) {
		return false
	}
	if s.owner != "" && s.owner != e.Owner {
		return false
	}
	if s.group != "" && s.group != e.Group {
		return false
	}
	if s.size != nil && !s.size.Compare(e.Size) {
		return false
	}
	if s.replication != nil && !s.replication.Compare(int64(e.Replication)) {
		return false
	}
	if !s.mtime.Match(e.ModTime) {
		return false
	}
	if s.name != nil && !s.name.MatchString(displayPath) {
		return false
	}
	return true
}

// Type returns the effective type filter, after replication filters forced it
func (s *Set) Type() domain.TypeFilter {
	return s.typ
}
