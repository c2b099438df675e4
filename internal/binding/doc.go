// Package binding lets a unit declare a named block of parameters once and
// propagates their values to the parameter registry, the run configuration
// and the package store.
//
// A Block moves through three states:
//
//	Declaring   AddParm/AddOption record pending parameters
//	Bound       Setup registered them with a params.Registry and, for
//	            options, a runconfig.Config; Get is available
//	Initialized Initialize pushed every value into a packagestore.Store;
//	            UpdateParm is available for Mutable parameters
//
// Using an accessor before its state is reached fails with a *StateError,
// which matches errs.ErrNotInitialized.
package binding
