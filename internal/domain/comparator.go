package domain

// Operator is the comparison direction of a Comparator
type Operator int

const (
	Equal Operator = iota
	LessThan
	GreaterThan
)

// String returns the symbol for the operator
func (o Operator) String() string {
	switch o {
	case LessThan:
		return "<"
	case GreaterThan:
		return ">"
	default:
		return "=="
	}
}

// Comparator compares an observed value against a threshold
type Comparator struct {
	Op        Operator
	Threshold int64
}

// Compare reports whether v satisfies the comparator
func (c Comparator) Compare(v int64) bool {
	switch c.Op {
	case LessThan:
		return v < c.Threshold
	case GreaterThan:
		return v > c.Threshold
	default:
		return v == c.Threshold
	}
}
