// Package format renders matched entries as bare paths or ls-style lines.
package format

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Ning0612/hfind/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05"

// Formatter writes one line per entry
type Formatter struct {
	w        io.Writer
	listing  bool
	human    bool
	fullURI  bool
	location *time.Location
}

// New creates a formatter for the display options of q. loc is the zone
// modification times are printed in (time.Local when nil).
func New(w io.Writer, q domain.Query, loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.Local
	}
	return &Formatter{
		w:        w,
		listing:  q.Listing,
		human:    q.Human,
		fullURI:  q.FullURI,
		location: loc,
	}
}

// DisplayPath returns the path string shown for e
func (f *Formatter) DisplayPath(e domain.Entry) string {
	return e.DisplayPath(f.fullURI)
}

// Write renders e
func (f *Formatter) Write(e domain.Entry) error {
	_, err := io.WriteString(f.w, f.Line(e)+"\n")
	return err
}

// Line renders e without the trailing newline
func (f *Formatter) Line(e domain.Entry) string {
	p := f.DisplayPath(e)
	if !f.listing {
		return p
	}

	typ := "-"
	if e.IsDir {
		typ = "d"
	}
	repl := "-"
	if e.Replication > 0 {
		repl = strconv.Itoa(e.Replication)
	}

	var size string
	if f.human {
		size = fmt.Sprintf("%4s", HumanSize(e.Size))
	} else {
		size = fmt.Sprintf("%12d", e.Size)
	}

	return fmt.Sprintf("%s%s %s %-8s %-16s %s %s %s",
		typ, e.PermissionString(), repl, e.Owner, e.Group, size,
		e.ModTime.In(f.location).Format(timeLayout), p)
}

var scales = []struct {
	limit  int64
	suffix string
}{
	{1 << 50, "P"},
	{1 << 40, "T"},
	{1 << 30, "G"},
	{1 << 20, "M"},
	{1 << 10, "K"},
}

// HumanSize scales n to the largest unit it strictly exceeds, truncating.
// Exactly 1M is therefore reported as 1024K.
func HumanSize(n int64) string {
	for _, s := range scales {
		if n > s.limit {
			return strconv.FormatInt(n/s.limit, 10) + s.suffix
		}
	}
	return strconv.FormatInt(n, 10) + "B"
}
