// Package magnitude parses find(1)-style size and count specs such as
// "+10M", "-1G" or "2048".
package magnitude

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Ning0612/hfind/internal/domain"
)

var specPattern = regexp.MustCompile(`^([+-]?)(\d+)([KMGTPkmgtp]?)$`)

// unit multipliers, powers of 1024
var units = map[string]int64{
	"":  1,
	"K": 1 << 10,
	"M": 1 << 20,
	"G": 1 << 30,
	"T": 1 << 40,
	"P": 1 << 50,
}

// Parse parses a size spec with an optional K/M/G/T/P suffix.
// Returns domain.ErrInvalidSpec for anything else.
func Parse(s string) (domain.Comparator, error) {
	return parse(s, true)
}

// ParseCount parses a unit-less count spec (used for replication).
func ParseCount(s string) (domain.Comparator, error) {
	return parse(s, false)
}

func parse(s string, allowUnit bool) (domain.Comparator, error) {
	m := specPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return domain.Comparator{}, fmt.Errorf("%w: %q", domain.ErrInvalidSpec, s)
	}

	unit := strings.ToUpper(m[3])
	if unit != "" && !allowUnit {
		return domain.Comparator{}, fmt.Errorf("%w: %q does not take a unit", domain.ErrInvalidSpec, s)
	}

	n, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return domain.Comparator{}, fmt.Errorf("%w: %q: %v", domain.ErrInvalidSpec, s, err)
	}

	multi := units[unit]
	if n > math.MaxInt64/multi {
		return domain.Comparator{}, fmt.Errorf("%w: %q overflows", domain.ErrInvalidSpec, s)
	}

	cmp := domain.Comparator{Op: domain.Equal, Threshold: n * multi}
	switch m[1] {
	case "-":
		cmp.Op = domain.LessThan
	case "+":
		cmp.Op = domain.GreaterThan
	}
	return cmp, nil
}
