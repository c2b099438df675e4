// Package errs holds the sentinel errors shared by the configuration core.
//
// Each package wraps these sentinels in its own typed error carrying the
// diagnostic context (block/key, cycle path, axis labels). Callers match with
// errors.Is against the sentinel or errors.As against the typed error.
package errs

import "errors"

var (
	// ErrDuplicateParameter is returned when a parameter, config entry or
	// unit is registered twice under the same identity.
	ErrDuplicateParameter = errors.New("duplicate parameter")
	// ErrUnknownParameter is returned when a lookup names something that
	// was never registered.
	ErrUnknownParameter = errors.New("unknown parameter")
	// ErrRuleViolation is returned when a value satisfies none of the rules
	// attached to its parameter.
	ErrRuleViolation = errors.New("rule violation")
	// ErrImmutableParameterUpdate is returned when updating a parameter that
	// was declared immutable.
	ErrImmutableParameterUpdate = errors.New("immutable parameter update")
	// ErrCyclicDependency is returned when a dependency graph is not acyclic.
	ErrCyclicDependency = errors.New("cyclic dependency")
	// ErrUnregisteredCombination is returned when an option value has no
	// handler in a dispatch table.
	ErrUnregisteredCombination = errors.New("unregistered combination")
	// ErrTypeMismatch is returned when a parameter is read or written with a
	// type different from the one it was declared with.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrNotInitialized is returned when an accessor is used before the
	// owning object reached the required lifecycle state.
	ErrNotInitialized = errors.New("not initialized")
	// ErrSealed is returned when mutating an object that has been frozen.
	ErrSealed = errors.New("sealed")
)
