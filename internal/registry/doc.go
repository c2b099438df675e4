// Package registry provides the central "glue" for the unit system.
//
// The Registry collects every unit compiled into the binary, orders each
// kind of lifecycle callback from the units' declared dependencies and
// drives the parameter lifecycle (setup, then package initialization) for
// all of them.
//
// During application startup, the registry is populated by Modules and
// then validated so that broken dependency declarations fail before any
// callback runs.
package registry
