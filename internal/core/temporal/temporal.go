// Package temporal resolves the --before/--after/--mmin/--mtime options of a
// query into a single comparison against an entry's modification time.
package temporal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Ning0612/hfind/internal/domain"
)

var datePrefix = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})`)

// Mode identifies which option produced a Filter
type Mode string

const (
	ModeBefore Mode = "before"
	ModeAfter  Mode = "after"
	ModeMMin   Mode = "mmin"
	ModeMTime  Mode = "mtime"
)

// Filter compares modification times, in unix seconds, against a fixed cutoff
type Filter struct {
	Mode       Mode
	Comparator domain.Comparator
}

// Resolve builds the time filter for q. It returns nil when q has no time
// option. Options are considered in the order before, after, mmin, mtime
// and the first one present wins. now is read once so every entry of a
// traversal is compared against the same cutoff.
func Resolve(q domain.Query, now time.Time, loc *time.Location) (*Filter, error) {
	if loc == nil {
		loc = time.Local
	}

	switch {
	case q.Before != "":
		m, err := parseDate(q.Before, loc)
		if err != nil {
			return nil, err
		}
		return &Filter{Mode: ModeBefore, Comparator: domain.Comparator{Op: domain.LessThan, Threshold: m}}, nil
	case q.After != "":
		m, err := parseDate(q.After, loc)
		if err != nil {
			return nil, err
		}
		return &Filter{Mode: ModeAfter, Comparator: domain.Comparator{Op: domain.GreaterThan, Threshold: m}}, nil
	case q.MMin != "":
		return relative(ModeMMin, q.MMin, 60, now)
	case q.MTime != "":
		return relative(ModeMTime, q.MTime, 86400, now)
	}
	return nil, nil
}

// Match reports whether mtime passes the filter. A nil filter always passes.
func (f *Filter) Match(mtime time.Time) bool {
	if f == nil {
		return true
	}
	return f.Comparator.Compare(mtime.Unix())
}

// parseDate returns local midnight of the YYYY-MM-DD prefix of s
func parseDate(s string, loc *time.Location) (int64, error) {
	m := datePrefix.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidDate, s)
	}
	t, err := time.ParseInLocation("2006-01-02", m[1], loc)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", domain.ErrInvalidDate, s, err)
	}
	return t.Unix(), nil
}

// relative converts a signed age in units of unitSeconds. Negative values
// mean "newer than", positive values "older than", zero "exactly now".
func relative(mode Mode, s string, unitSeconds int64, now time.Time) (*Filter, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: --%s %q", domain.ErrInvalidSpec, mode, s)
	}

	op := domain.Equal
	abs := n
	if n < 0 {
		op = domain.GreaterThan
		abs = -n
	} else if n > 0 {
		op = domain.LessThan
	}

	cutoff := now.Unix() - abs*unitSeconds
	return &Filter{Mode: mode, Comparator: domain.Comparator{Op: op, Threshold: cutoff}}, nil
}
