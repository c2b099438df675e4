package params

import (
	"fmt"
	"strconv"
	"strings"
)

// Scalar is the set of value types a parameter can hold.
type Scalar interface {
	bool | int | float64 | string
}

// Number is the subset of Scalar that supports range rules.
type Number interface {
	int | float64
}

// Rule validates a candidate value for a parameter of type T.
type Rule[T Scalar] interface {
	// Allows reports whether v satisfies the rule.
	Allows(v T) bool
	// allowed renders the rule for the "Allowed" documentation column.
	// An empty string means the rule does not restrict the value.
	allowed() string
}

type rangeRule[T Number] struct {
	lo, hi T
}

// Range returns a rule accepting values in the closed interval [lo, hi].
// It panics when hi < lo; rules are declared in unit setup code, so a
// reversed range is a programming error.
func Range[T Number](lo, hi T) Rule[T] {
	if hi < lo {
		panic(fmt.Sprintf("params: Range(%v, %v) has its upper bound below its lower bound", lo, hi))
	}
	return rangeRule[T]{lo: lo, hi: hi}
}

func (r rangeRule[T]) Allows(v T) bool { return v >= r.lo && v <= r.hi }

func (r rangeRule[T]) allowed() string {
	if r.hi > r.lo {
		return formatNumber(r.lo) + "..." + formatNumber(r.hi)
	}
	return formatNumber(r.lo)
}

type exactRule[T Scalar] struct {
	v T
}

// Exactly returns a rule accepting a single value. String values are
// compared case-insensitively.
func Exactly[T Scalar](v T) Rule[T] {
	if s, ok := any(v).(string); ok {
		v = any(strings.ToLower(s)).(T)
	}
	return exactRule[T]{v: v}
}

func (r exactRule[T]) Allows(v T) bool { return v == r.v }

func (r exactRule[T]) allowed() string {
	switch x := any(r.v).(type) {
	case int:
		return formatNumber(x)
	case float64:
		return formatNumber(x)
	default:
		return fmt.Sprint(x)
	}
}

// OneOf returns one Exactly rule per value, which together form a string
// membership rule.
func OneOf(values ...string) []Rule[string] {
	rules := make([]Rule[string], 0, len(values))
	for _, v := range values {
		rules = append(rules, Exactly(v))
	}
	return rules
}

type alwaysRule[T Scalar] struct{}

// Always returns a rule that accepts every value. It documents that a
// parameter is intentionally unrestricted, which is the norm for booleans.
func Always[T Scalar]() Rule[T] { return alwaysRule[T]{} }

func (alwaysRule[T]) Allows(T) bool   { return true }
func (alwaysRule[T]) allowed() string { return "" }

// satisfies reports whether v passes at least one rule. An empty rule set
// accepts everything.
func satisfies[T Scalar](v T, rules []Rule[T]) bool {
	if len(rules) == 0 {
		return true
	}
	for _, r := range rules {
		if r.Allows(v) {
			return true
		}
	}
	return false
}

// allowedList renders rules as "[3...6, 8, ]". Unrestricting rules are
// skipped; an empty result means nothing is listed.
func allowedList[T Scalar](rules []Rule[T]) string {
	var parts []string
	for _, r := range rules {
		if s := r.allowed(); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("[")
	for _, p := range parts {
		sb.WriteString(p)
		sb.WriteString(", ")
	}
	sb.WriteString("]")
	return sb.String()
}

func formatNumber[T Number](v T) string {
	switch x := any(v).(type) {
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', 6, 64)
	}
	return fmt.Sprint(v)
}

// formatDefault renders a default for documentation. Numbers whose fixed
// notation is longer than five characters switch to "%.5e".
func formatDefault[T Scalar](v T) string {
	var s string
	switch x := any(v).(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		s = strconv.Itoa(x)
		if len(s) > 5 {
			s = fmt.Sprintf("%.5e", float64(x))
		}
	case float64:
		s = fmt.Sprintf("%f", x)
		if len(s) > 5 {
			s = fmt.Sprintf("%.5e", x)
		}
	}
	return s
}
