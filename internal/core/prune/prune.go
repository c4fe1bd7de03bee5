// Package prune decides which entries are cut from a traversal before they
// are displayed or descended into.
package prune

import (
	"strings"

	"github.com/Ning0612/hfind/internal/domain"
)

// Policy is evaluated during the walk, unlike predicates which only affect
// display. A pruned directory is never listed.
type Policy interface {
	Prune(e domain.Entry) bool
}

// Hidden prunes entries whose name follows the store's hidden-file
// convention: a leading underscore on HDFS, a leading dot elsewhere.
type Hidden struct {
	Enabled bool
}

// NewHidden returns the hidden-name policy for a query
func NewHidden(q domain.Query) Hidden {
	return Hidden{Enabled: q.PruneHidden}
}

// Prune implements Policy
func (h Hidden) Prune(e domain.Entry) bool {
	if !h.Enabled {
		return false
	}
	return strings.HasPrefix(e.Name(), HiddenPrefix(e.Scheme))
}

// HiddenPrefix returns the hidden-name prefix for a URI scheme
func HiddenPrefix(scheme string) string {
	if scheme == "hdfs" {
		return "_"
	}
	return "."
}

// None never prunes
type None struct{}

// Prune implements Policy
func (None) Prune(domain.Entry) bool { return false }
