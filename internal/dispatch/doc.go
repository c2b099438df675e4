// Package dispatch resolves a runtime tuple of option values to one handler
// out of a declared combinatorial option space.
//
// A Table declares an ordered list of dimensions. A dimension is a plain
// option axis (On) or a Composite built from several axes by a factory;
// composites expand into their constituent axes before matching. Handlers
// are registered per combination, optionally backed by a Fallback that
// covers every combination without its own handler. Seal checks that the
// active option space is covered exactly, builds the composite objects and
// freezes the table.
//
// A sealed table is immutable, so Execute may be called from any number of
// goroutines without locking.
package dispatch
