package binding

import (
	"fmt"

	"github.com/vk/simunit/internal/errs"
)

// State is the lifecycle state of a Block.
type State int

const (
	Declaring State = iota
	Bound
	Initialized
)

func (s State) String() string {
	switch s {
	case Declaring:
		return "declaring"
	case Bound:
		return "bound"
	case Initialized:
		return "initialized"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// StateError reports an operation attempted before its block reached the
// required state.
type StateError struct {
	Block string
	Op    string
	State State
	Want  State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("block %s: %s requires state %s, block is %s", e.Block, e.Op, e.Want, e.State)
}

// Unwrap lets callers match the error with errors.Is(err, errs.ErrNotInitialized).
func (e *StateError) Unwrap() error {
	return errs.ErrNotInitialized
}
