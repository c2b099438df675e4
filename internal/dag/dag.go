package dag

import (
	"fmt"
	"io"
	"slices"

	"github.com/vk/simunit/internal/errs"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.sealed {
		return fmt.Errorf("add node %q: %w", id, errs.ErrSealed)
	}
	g.addNodeLocked(id)
	return nil
}

func (g *Graph) addNodeLocked(id string) *node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := &node{id: id, edges: make(map[string]struct{})}
	g.nodes[id] = n
	g.order = append(g.order, id)
	return n
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node,
// meaning `fromID` must run before `toID`. Missing endpoints are created.
// Adding an existing edge is a no-op. A self edge is accepted here and
// reported as a cycle by TopologicalSort.
func (g *Graph) AddEdge(fromID, toID string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.sealed {
		return fmt.Errorf("add edge %s -> %s: %w", fromID, toID, errs.ErrSealed)
	}

	from := g.addNodeLocked(fromID)
	to := g.addNodeLocked(toID)
	if _, ok := from.edges[toID]; ok {
		return nil
	}
	from.edges[toID] = struct{}{}
	from.dependents = append(from.dependents, toID)
	to.deps = append(to.deps, fromID)
	return nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.order)
}

// Nodes returns all node IDs in insertion order.
func (g *Graph) Nodes() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return slices.Clone(g.order)
}

// Dependencies returns the IDs of the nodes that must run before the given node.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return slices.Clone(n.deps), nil
}

// Dependents returns the IDs of the nodes that must run after the given node.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return slices.Clone(n.dependents), nil
}

// DetectCycles checks the graph for cycles. If one is found it returns a
// *CycleError holding the concrete path.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.detectCyclesLocked()
}

func (g *Graph) detectCyclesLocked() error {
	// Classic depth-first search with three sets of nodes:
	// permanent: fully visited, not part of a cycle.
	// temporary: on the current recursion stack, mirrored by path.
	permanent := make(map[string]bool, len(g.nodes))
	temporary := make(map[string]bool)
	var path []string

	var visit func(n *node) []string
	visit = func(n *node) []string {
		temporary[n.id] = true
		path = append(path, n.id)

		for _, next := range n.dependents {
			if temporary[next] {
				start := slices.Index(path, next)
				cycle := slices.Clone(path[start:])
				return append(cycle, next)
			}
			if permanent[next] {
				continue
			}
			if cycle := visit(g.nodes[next]); cycle != nil {
				return cycle
			}
		}

		path = path[:len(path)-1]
		delete(temporary, n.id)
		permanent[n.id] = true
		return nil
	}

	for _, id := range g.order {
		if permanent[id] {
			continue
		}
		if cycle := visit(g.nodes[id]); cycle != nil {
			return &CycleError{Cycle: cycle}
		}
	}
	return nil
}

// TopologicalSort returns every node ID ordered so that for each edge
// (from, to) `from` appears before `to`. The order is the reverse DFS
// postorder, visiting roots and successors in insertion order, so equal
// inputs always yield equal outputs.
//
// The graph is validated for cycles first. After the first successful sort
// the graph is sealed and refuses new nodes and edges.
func (g *Graph) TopologicalSort() ([]string, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if err := g.detectCyclesLocked(); err != nil {
		return nil, err
	}

	visited := make(map[string]bool, len(g.nodes))
	post := make([]string, 0, len(g.nodes))

	var visit func(n *node)
	visit = func(n *node) {
		visited[n.id] = true
		for _, next := range n.dependents {
			if !visited[next] {
				visit(g.nodes[next])
			}
		}
		post = append(post, n.id)
	}

	for _, id := range g.order {
		if !visited[id] {
			visit(g.nodes[id])
		}
	}

	slices.Reverse(post)
	g.sealed = true
	return post, nil
}

// Sealed reports whether the graph has been sorted and is now read-only.
func (g *Graph) Sealed() bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.sealed
}

// Render writes the graph in GraphViz DOT format. It does not modify the graph.
func (g *Graph) Render(w io.Writer) error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	p := &errWriter{w: w}
	p.printf("digraph {\n")
	p.printf("  node [fontname=\"Helvetica,Arial,sans-serif\"]\n")
	p.printf("  edge [fontname=\"Helvetica,Arial,sans-serif\"]\n")
	for _, id := range g.order {
		p.printf("  %q;\n", id)
	}
	for _, id := range g.order {
		for _, to := range g.nodes[id].dependents {
			p.printf("  %q -> %q;\n", id, to)
		}
	}
	p.printf("}\n")
	return p.err
}

// errWriter remembers the first write error so Render can print freely.
type errWriter struct {
	w   io.Writer
	err error
}

func (p *errWriter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
