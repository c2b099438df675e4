package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/simunit/internal/ctxlog"
	"github.com/vk/simunit/internal/packagestore"
	"github.com/vk/simunit/internal/params"
	"github.com/vk/simunit/internal/runconfig"
	"github.com/vk/simunit/internal/unit"
)

// SetupParams attaches the shared registry and configuration to every unit
// and runs the setup callbacks, which declare options and parameters.
func (r *Registry) SetupParams(ctx context.Context, registry *params.Registry, config *runconfig.Config) error {
	logger := ctxlog.FromContext(ctx)
	for _, u := range r.Units() {
		if err := u.InitResources(registry, config); err != nil {
			return err
		}
	}
	if err := r.Run(ctx, unit.Setup, nil); err != nil {
		return err
	}
	logger.Debug("Unit parameters set up.", "units", r.Len(), "parameters", registry.Len())
	return nil
}

// InitializePackages pushes every unit's parameters into store and runs
// the initialize callbacks.
func (r *Registry) InitializePackages(ctx context.Context, store packagestore.Store) error {
	logger := ctxlog.FromContext(ctx)
	for _, u := range r.Units() {
		if err := u.InitializePackage(ctx, store); err != nil {
			return err
		}
	}
	if err := r.Run(ctx, unit.Initialize, nil); err != nil {
		return err
	}
	logger.Debug("Unit packages initialized.", "units", r.Len())
	return nil
}

// SealTables seals every unit's dispatch tables against the current
// option restrictions. All failures are reported together.
func (r *Registry) SealTables(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs []error
	sealed := 0
	for _, u := range r.Units() {
		for _, t := range u.Tables() {
			if t.Sealed() {
				continue
			}
			if err := t.Seal(); err != nil {
				errs = append(errs, fmt.Errorf("unit %s: %w", u.Name(), err))
				continue
			}
			sealed++
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	logger.Debug("Dispatch tables sealed.", "count", sealed)
	return nil
}
