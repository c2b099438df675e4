// Package unit defines the building block of a simulation: a named unit
// that owns parameter blocks and registers lifecycle callbacks.
//
// Every callback registration may name units that must run before it
// (DependsOn) and units that must run after it (RequiredBy). The registry
// package turns those declarations into an execution order per Kind.
package unit
