package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/Ning0612/hfind/internal/domain"
)

// Reporter receives traversal events
type Reporter interface {
	// Visit is called for every entry the walk yields
	Visit(e domain.Entry)
	// Prune is called for every entry cut by the pruning policy
	Prune(e domain.Entry)
	// Match is called for every entry that passed the predicates
	Match(e domain.Entry)
	// Error reports the failure that ended the traversal
	Error(err error)
}

// Callback is a function that receives progress updates
type Callback func(update Update)

// Update represents a progress update
type Update struct {
	Type  UpdateType
	Path  string
	Stats Stats
	Error error
}

// UpdateType indicates the type of progress update
type UpdateType int

const (
	UpdateVisit UpdateType = iota
	UpdatePrune
	UpdateMatch
	UpdateError
)

// Stats summarises one traversal
type Stats struct {
	Visited      int
	Directories  int
	Pruned       int
	Matched      int
	BytesMatched int64
	Elapsed      time.Duration
}

// EntriesPerSecond returns the visit rate
func (s Stats) EntriesPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Visited) / s.Elapsed.Seconds()
}

// CallbackReporter implements Reporter, keeping running totals and
// forwarding every event to an optional callback
type CallbackReporter struct {
	callback  Callback
	mu        sync.Mutex
	stats     Stats
	startTime time.Time
}

// NewCallbackReporter creates a new CallbackReporter; callback may be nil
func NewCallbackReporter(callback Callback) *CallbackReporter {
	return &CallbackReporter{
		callback:  callback,
		startTime: time.Now(),
	}
}

// Visit implements Reporter
func (r *CallbackReporter) Visit(e domain.Entry) {
	r.emit(UpdateVisit, e.Path, nil, func(s *Stats) {
		s.Visited++
		if e.IsDir {
			s.Directories++
		}
	})
}

// Prune implements Reporter
func (r *CallbackReporter) Prune(e domain.Entry) {
	r.emit(UpdatePrune, e.Path, nil, func(s *Stats) {
		s.Pruned++
	})
}

// Match implements Reporter
func (r *CallbackReporter) Match(e domain.Entry) {
	r.emit(UpdateMatch, e.Path, nil, func(s *Stats) {
		s.Matched++
		if !e.IsDir {
			s.BytesMatched += e.Size
		}
	})
}

// Error implements Reporter
func (r *CallbackReporter) Error(err error) {
	r.emit(UpdateError, "", err, func(*Stats) {})
}

// Stats returns a snapshot of the running totals
func (r *CallbackReporter) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stats
	s.Elapsed = time.Since(r.startTime)
	return s
}

func (r *CallbackReporter) emit(typ UpdateType, path string, err error, apply func(*Stats)) {
	r.mu.Lock()
	apply(&r.stats)
	stats := r.stats
	stats.Elapsed = time.Since(r.startTime)
	callback := r.callback
	r.mu.Unlock()

	// Call callback outside lock to prevent deadlock
	if callback != nil {
		callback(Update{Type: typ, Path: path, Stats: stats, Error: err})
	}
}

// NullReporter is a no-op reporter
type NullReporter struct{}

func (NullReporter) Visit(domain.Entry) {}
func (NullReporter) Prune(domain.Entry) {}
func (NullReporter) Match(domain.Entry) {}
func (NullReporter) Error(error)        {}

// MultiReporter fans every event out to several reporters in order
type MultiReporter []Reporter

// NewMultiReporter drops nil entries
func NewMultiReporter(reporters ...Reporter) MultiReporter {
	var m MultiReporter
	for _, r := range reporters {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

func (m MultiReporter) Visit(e domain.Entry) {
	for _, r := range m {
		r.Visit(e)
	}
}

func (m MultiReporter) Prune(e domain.Entry) {
	for _, r := range m {
		r.Prune(e)
	}
}

func (m MultiReporter) Match(e domain.Entry) {
	for _, r := range m {
		r.Match(e)
	}
}

func (m MultiReporter) Error(err error) {
	for _, r := range m {
		r.Error(err)
	}
}

// FormatBytes formats bytes into human-readable string
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
