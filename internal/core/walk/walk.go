// Package walk implements the pre-order depth-first traversal over a
// filesystem adapter. The walk is an iterator backed by an explicit stack,
// so it streams entries without holding the tree in memory.
package walk

import (
	"context"

	"github.com/Ning0612/hfind/internal/core/prune"
	"github.com/Ning0612/hfind/internal/domain"
	"github.com/Ning0612/hfind/internal/progress"
)

// Lister lists the direct children of a directory
type Lister interface {
	List(ctx context.Context, path string) ([]domain.Entry, error)
}

type frame struct {
	entry domain.Entry
	root  bool
}

// Walker yields every non-pruned entry below a set of roots.
//
//	w := walk.New(ctx, fs, roots, policy, nil)
//	for {
//		e, ok := w.Next()
//		if !ok {
//			break
//		}
//		...
//	}
//	if err := w.Err(); err != nil { ... }
type Walker struct {
	ctx      context.Context
	lister   Lister
	policy   prune.Policy
	reporter progress.Reporter

	stack []frame
	// pending is the directory returned by the last Next call; it is listed
	// at the start of the following call so its own line comes first.
	pending *domain.Entry
	err     error
}

// New creates a walker over roots. Roots are never pruned. policy and
// reporter may be nil.
func New(ctx context.Context, lister Lister, roots []domain.Entry, policy prune.Policy, reporter progress.Reporter) *Walker {
	if policy == nil {
		policy = prune.None{}
	}
	if reporter == nil {
		reporter = progress.NullReporter{}
	}

	w := &Walker{
		ctx:      ctx,
		lister:   lister,
		policy:   policy,
		reporter: reporter,
		stack:    make([]frame, 0, len(roots)),
	}
	for i := len(roots) - 1; i >= 0; i-- {
		w.stack = append(w.stack, frame{entry: roots[i], root: true})
	}
	return w
}

// Next advances to the next entry. It returns false when the walk is
// finished or failed; check Err to tell the two apart.
func (w *Walker) Next() (domain.Entry, bool) {
	if w.err != nil {
		return domain.Entry{}, false
	}

	if w.pending != nil {
		dir := *w.pending
		w.pending = nil
		if err := w.expand(dir); err != nil {
			w.fail(err)
			return domain.Entry{}, false
		}
	}

	for len(w.stack) > 0 {
		if err := w.ctx.Err(); err != nil {
			w.fail(err)
			return domain.Entry{}, false
		}

		top := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]

		if !top.root && w.policy.Prune(top.entry) {
			w.reporter.Prune(top.entry)
			continue
		}

		w.reporter.Visit(top.entry)
		if top.entry.IsDir {
			e := top.entry
			w.pending = &e
		}
		return top.entry, true
	}

	return domain.Entry{}, false
}

// Err returns the error that stopped the walk, if any. Adapter failures
// are wrapped in *domain.BackendError.
func (w *Walker) Err() error {
	return w.err
}

// expand lists dir and pushes its children so they pop in listing order
func (w *Walker) expand(dir domain.Entry) error {
	children, err := w.lister.List(w.ctx, dir.Path)
	if err != nil {
		return &domain.BackendError{Op: "list", Path: dir.Path, Err: err}
	}
	for i := len(children) - 1; i >= 0; i-- {
		w.stack = append(w.stack, frame{entry: children[i]})
	}
	return nil
}

func (w *Walker) fail(err error) {
	w.err = err
	w.stack = nil
	w.reporter.Error(err)
}
