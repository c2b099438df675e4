package dispatch

import (
	"fmt"
	"strings"

	"github.com/vk/simunit/internal/errs"
)

// UnregisteredError reports an option value outside the active subset of a
// table's axis. Tag names the caller site that asked for the dispatch.
type UnregisteredError struct {
	Table     string
	Tag       string
	Axis      string
	Requested string
	Valid     []string
}

func (e *UnregisteredError) Error() string {
	return fmt.Sprintf("dispatch %s: option %s = [%s] not handled, allowed options are: (%s) from: %s",
		e.Table, e.Axis, e.Requested, strings.Join(e.Valid, " "), e.Tag)
}

func (e *UnregisteredError) Unwrap() error { return errs.ErrUnregisteredCombination }

// IncompleteError is returned by Seal when some combinations of the active
// option space have neither a handler nor a fallback.
type IncompleteError struct {
	Table   string
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("dispatch %s: %d combination(s) without a handler: {%s}",
		e.Table, len(e.Missing), strings.Join(e.Missing, "}, {"))
}

func (e *IncompleteError) Unwrap() error { return errs.ErrUnregisteredCombination }
