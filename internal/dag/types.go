package dag

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vk/simunit/internal/errs"
)

// Graph is a collection of named nodes and directed edges between them.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects nodes, order and sealed.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// order keeps node IDs in insertion order so traversals are reproducible.
	order []string
	// sealed is set by the first successful TopologicalSort.
	sealed bool
}

// node represents a single vertex in the graph. It is un-exported to
// enforce interaction with the graph via the public API (using string IDs),
// not by direct struct manipulation.
type node struct {
	id string
	// deps holds the IDs of predecessors in the order the edges were added.
	deps []string
	// dependents holds the IDs of successors in the order the edges were added.
	dependents []string
	// edges is the set of successor IDs, used to keep AddEdge idempotent.
	edges map[string]struct{}
}

// CycleError reports a dependency cycle. Cycle holds the offending path with
// the first node repeated at the end, e.g. [a b c a].
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic dependency detected: %s", strings.Join(e.Cycle, " -> "))
}

// Unwrap lets callers match the error with errors.Is(err, errs.ErrCyclicDependency).
func (e *CycleError) Unwrap() error {
	return errs.ErrCyclicDependency
}
