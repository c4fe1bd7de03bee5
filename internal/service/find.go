package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/Ning0612/hfind/internal/adapter"
	"github.com/Ning0612/hfind/internal/config"
	"github.com/Ning0612/hfind/internal/core/format"
	"github.com/Ning0612/hfind/internal/core/predicate"
	"github.com/Ning0612/hfind/internal/core/prune"
	"github.com/Ning0612/hfind/internal/core/walk"
	"github.com/Ning0612/hfind/internal/domain"
	"github.com/Ning0612/hfind/internal/logger"
	"github.com/Ning0612/hfind/internal/progress"
	"github.com/Ning0612/hfind/internal/state"
)

// FindService runs one query end to end: resolve the root, expand globs,
// walk, filter and print.
type FindService struct {
	config   *config.Config
	opener   Opener
	history  *state.Manager
	reporter progress.Reporter

	now      func() time.Time
	location *time.Location
}

// Opener resolves a root URI to a filesystem and the path to search on it
type Opener interface {
	Open(ctx context.Context, root string) (adapter.Filesystem, string, error)
}

// Result summarises a finished query
type Result struct {
	Stats progress.Stats

	// RunID is the history record id, empty when history is disabled
	RunID string
}

// NewFindService creates a find service
func NewFindService(cfg *config.Config, opener Opener) (*FindService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if opener == nil {
		return nil, fmt.Errorf("opener cannot be nil")
	}

	return &FindService{
		config:   cfg,
		opener:   opener,
		now:      time.Now,
		location: time.Local,
	}, nil
}

// SetHistory enables recording of every run in m
func (s *FindService) SetHistory(m *state.Manager) {
	s.history = m
}

// SetProgressReporter forwards traversal events to r in addition to the
// service's own statistics
func (s *FindService) SetProgressReporter(r progress.Reporter) {
	s.reporter = r
}

// SetClock overrides the reference time and zone used by age and date filters
func (s *FindService) SetClock(now func() time.Time, loc *time.Location) {
	s.now = now
	s.location = loc
}

// Find runs q and writes matching entries to out. Query errors are
// returned before any backend is contacted. Backend failures stop the
// walk; entries already written stay written.
func (s *FindService) Find(ctx context.Context, q domain.Query, out io.Writer) (*Result, error) {
	start := s.now()
	log := logger.With("root", q.Root)

	// validate every option before touching a backend
	if _, err := predicate.New(q, s.predicateOptions(start, s.config.Replication.Default)); err != nil {
		return nil, err
	}

	stats := progress.NewCallbackReporter(nil)
	reporter := progress.NewMultiReporter(stats, s.reporter)
	result := &Result{}

	err := s.run(ctx, q, out, start, reporter)
	result.Stats = stats.Stats()

	log.Debug("find finished",
		"visited", result.Stats.Visited,
		"directories", result.Stats.Directories,
		"pruned", result.Stats.Pruned,
		"matched", result.Stats.Matched,
		"bytes_matched", result.Stats.BytesMatched,
		"elapsed", result.Stats.Elapsed,
		"entries_per_second", fmt.Sprintf("%.1f", result.Stats.EntriesPerSecond()),
	)

	result.RunID = s.record(q, start, result.Stats, err)
	return result, err
}

func (s *FindService) run(ctx context.Context, q domain.Query, out io.Writer, start time.Time, reporter progress.Reporter) error {
	fs, p, err := s.opener.Open(ctx, q.Root)
	if err != nil {
		return err
	}
	defer fs.Close()

	p, err = s.resolveRoot(ctx, fs, p)
	if err != nil {
		return &domain.BackendError{Op: "resolve", Path: q.Root, Err: err}
	}

	defaultRepl := s.config.Replication.Default
	if d, ok := fs.(adapter.ReplicationDefaulter); ok {
		defaultRepl = d.DefaultReplication()
	}
	preds, err := predicate.New(q, s.predicateOptions(start, defaultRepl))
	if err != nil {
		return err
	}

	roots, err := fs.Glob(ctx, p)
	if err != nil {
		return &domain.BackendError{Op: "glob", Path: p, Err: err}
	}
	logger.Get().Debug("root expanded", "pattern", p, "roots", len(roots))

	buf := bufio.NewWriter(out)
	formatter := format.New(buf, q, s.location)
	w := walk.New(ctx, fs, roots, prune.NewHidden(q), reporter)

	for {
		e, ok := w.Next()
		if !ok {
			break
		}
		if !preds.Match(e, formatter.DisplayPath(e)) {
			continue
		}
		reporter.Match(e)
		if err := formatter.Write(e); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	// flush what matched before the failure, then report it
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return w.Err()
}

// resolveRoot substitutes a leading "." with the home path and makes a
// relative path absolute
func (s *FindService) resolveRoot(ctx context.Context, fs adapter.Filesystem, p string) (string, error) {
	if p == "." || strings.HasPrefix(p, "./") {
		home, err := s.home(ctx, fs)
		if err != nil {
			return "", err
		}
		return path.Join(home, strings.TrimPrefix(p, ".")), nil
	}
	if path.IsAbs(p) {
		return p, nil
	}

	var (
		base string
		err  error
	)
	if wd, ok := fs.(adapter.WorkingDirer); ok {
		base, err = wd.WorkingDir()
	} else {
		base, err = s.home(ctx, fs)
	}
	if err != nil {
		return "", err
	}
	return path.Join(base, p), nil
}

func (s *FindService) home(ctx context.Context, fs adapter.Filesystem) (string, error) {
	if s.config.Home != "" {
		return s.config.Home, nil
	}
	return fs.Home(ctx)
}

func (s *FindService) predicateOptions(now time.Time, defaultRepl int) predicate.Options {
	return predicate.Options{
		Now:                now,
		Location:           s.location,
		DefaultReplication: defaultRepl,
	}
}

// record saves the run to history; failures are logged, never returned
func (s *FindService) record(q domain.Query, start time.Time, stats progress.Stats, runErr error) string {
	if s.history == nil {
		return ""
	}

	rec := state.RunRecord{
		Root:         q.Root,
		Query:        q.Flags(),
		StartTime:    start,
		EndTime:      start.Add(stats.Elapsed),
		Status:       state.StatusSuccess,
		Visited:      stats.Visited,
		Matched:      stats.Matched,
		BytesMatched: stats.BytesMatched,
	}
	switch {
	case errors.Is(runErr, context.Canceled):
		rec.Status = state.StatusCancelled
		rec.Error = runErr.Error()
	case runErr != nil:
		rec.Status = state.StatusFailed
		rec.Error = runErr.Error()
	}

	id, err := s.history.SaveRun(rec)
	if err != nil {
		logger.Get().Warn("failed to record run in history", "error", err)
		return ""
	}
	return id
}
