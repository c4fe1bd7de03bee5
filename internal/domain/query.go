package domain

import (
	"strconv"
	"strings"
)

// TypeFilter restricts matches to files or directories
type TypeFilter string

const (
	TypeAny       TypeFilter = ""
	TypeFile      TypeFilter = "f"
	TypeDirectory TypeFilter = "d"
)

// IsValid checks if the type filter is a known value
func (t TypeFilter) IsValid() bool {
	switch t {
	case TypeAny, TypeFile, TypeDirectory:
		return true
	}
	return false
}

// Matches reports whether an entry of the given kind passes the filter
func (t TypeFilter) Matches(isDir bool) bool {
	switch t {
	case TypeFile:
		return !isDir
	case TypeDirectory:
		return isDir
	}
	return true
}

// Query holds every filter and display option of one invocation.
// Empty strings and false values mean "option not given".
type Query struct {
	// Root is the path or URI to search, possibly containing glob characters
	Root string

	// Size is a magnitude spec such as "+10M"
	Size string

	// Replication is a count spec such as "-3"
	Replication string

	Type  TypeFilter
	Owner string
	Group string

	// Name is an unanchored regular expression matched against the display path
	Name string

	// Temporal options, in order of precedence
	Before string
	After  string
	MMin   string
	MTime  string

	Listing         bool
	Human           bool
	FullURI         bool
	PruneHidden     bool
	UnderReplicated bool
}

// HasTemporal returns true if any time option is set
func (q Query) HasTemporal() bool {
	return q.Before != "" || q.After != "" || q.MMin != "" || q.MTime != ""
}

// Flags renders the filter options that are set, in command-line form
// (e.g. "-t f -s +1G -D"). Root is not included.
func (q Query) Flags() string {
	var parts []string
	add := func(flag, value string) {
		if value != "" {
			parts = append(parts, flag, quoteArg(value))
		}
	}
	toggle := func(flag string, on bool) {
		if on {
			parts = append(parts, flag)
		}
	}

	add("-s", q.Size)
	add("-r", q.Replication)
	add("-t", string(q.Type))
	add("-u", q.Owner)
	add("-g", q.Group)
	add("-n", q.Name)
	add("-b", q.Before)
	add("-a", q.After)
	add("-m", q.MMin)
	add("-M", q.MTime)
	toggle("-l", q.Listing)
	toggle("-h", q.Human)
	toggle("-i", q.FullURI)
	toggle("-D", q.PruneHidden)
	toggle("-U", q.UnderReplicated)

	return strings.Join(parts, " ")
}

func quoteArg(s string) string {
	if strings.ContainsAny(s, " \t'\"") {
		return strconv.Quote(s)
	}
	return s
}
