package params

import (
	"fmt"

	"github.com/vk/simunit/internal/errs"
)

// Type names the scalar type of a parameter.
type Type int

const (
	TypeBoolean Type = iota
	TypeInteger
	TypeReal
	TypeString
)

func (t Type) String() string {
	switch t {
	case TypeBoolean:
		return "Boolean"
	case TypeInteger:
		return "Integer"
	case TypeReal:
		return "Real"
	case TypeString:
		return "String"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

func typeOf[T Scalar]() Type {
	var zero T
	switch any(zero).(type) {
	case bool:
		return TypeBoolean
	case int:
		return TypeInteger
	case float64:
		return TypeReal
	default:
		return TypeString
	}
}

// Info is the read-only description of a registered parameter consumed by
// the documentation generator.
type Info struct {
	Block       string
	Key         string
	Type        Type
	Default     string
	Allowed     string
	Description string
}

// DocString returns "default | allowed | description".
func (i Info) DocString() string {
	return i.Default + " | " + i.Allowed + " | " + i.Description
}

// Row returns the parameter formatted as one markdown table row without the
// block column: " | key | Type | default | allowed | description\n".
func (i Info) Row() string {
	return " | " + i.Key + " | " + i.Type.String() + " | " + i.DocString() + "\n"
}

// RuleError reports a value that satisfies none of a parameter's rules.
type RuleError struct {
	Block string
	Key   string
	Value any
	Doc   string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("invalid value for runtime parameter <%s>/%s = %v | %s", e.Block, e.Key, e.Value, e.Doc)
}

// Unwrap lets callers match the error with errors.Is(err, errs.ErrRuleViolation).
func (e *RuleError) Unwrap() error {
	return errs.ErrRuleViolation
}

// entry is the type-erased view of a parameter stored in the registry.
type entry interface {
	info() Info
	value() any
}

type param[T Scalar] struct {
	meta  Info
	val   T
	def   T
	rules []Rule[T]
}

func (p *param[T]) info() Info { return p.meta }
func (p *param[T]) value() any { return p.val }

func (p *param[T]) check(v T) error {
	if satisfies(v, p.rules) {
		return nil
	}
	return &RuleError{Block: p.meta.Block, Key: p.meta.Key, Value: v, Doc: p.meta.DocString()}
}
