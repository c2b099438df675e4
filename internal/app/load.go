package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/simunit/internal/ctxlog"
	"github.com/vk/simunit/internal/inmemorystore"
	"github.com/vk/simunit/internal/options"
	"github.com/vk/simunit/internal/params"
	"github.com/vk/simunit/internal/runconfig"
)

// ErrAlreadySetUp is returned when Setup runs twice on one App.
var ErrAlreadySetUp = errors.New("application is already set up")

// Setup loads the input decks and takes every unit through its parameter
// lifecycle: validate, setup callbacks, option restrictions, dispatch
// table sealing, package initialization and initialize callbacks.
func (a *App) Setup(ctx context.Context) error {
	if a.params != nil {
		return ErrAlreadySetUp
	}
	ctx = a.Context(ctx)
	logger := ctxlog.FromContext(ctx)

	deck, err := a.loader.Load(ctx, a.config.DeckPaths...)
	if err != nil {
		return fmt.Errorf("failed to load input deck: %w", err)
	}
	logger.Debug("Input deck loaded.", "blocks", deck.Blocks(), "values", deck.Len())

	if err := a.registry.Validate(ctx); err != nil {
		return err
	}
	logger.Debug("Registry validation passed.")

	rps := params.New(deck)
	cfg := runconfig.New()
	if err := a.registry.SetupParams(ctx, rps, cfg); err != nil {
		return fmt.Errorf("setting up parameters: %w", err)
	}

	restore, err := a.restrict(cfg)
	if err != nil {
		return err
	}
	// Sealed tables keep their own copy of the active subsets, so the
	// process-wide axes go back to their previous state right away.
	err = a.registry.SealTables(ctx)
	restore()
	if err != nil {
		return fmt.Errorf("sealing dispatch tables: %w", err)
	}

	store := inmemorystore.New()
	if err := a.registry.InitializePackages(ctx, store); err != nil {
		return fmt.Errorf("initializing packages: %w", err)
	}

	a.deck, a.params, a.options, a.store = deck, rps, cfg, store
	logger.Info("Setup complete.", "units", a.registry.Len(), "parameters", rps.Len(), "options", len(cfg.Entries()))
	return nil
}

// restrict applies the configured axis restrictions to the axes the units
// put in the run configuration. The returned func undoes them.
func (a *App) restrict(cfg *runconfig.Config) (func(), error) {
	if len(a.config.Restrict) == 0 {
		return func() {}, nil
	}
	r, err := options.ParseRestrictions(a.config.Restrict...)
	if err != nil {
		return nil, err
	}
	restore, err := r.Apply(cfg.Axes()...)
	if err != nil {
		return nil, fmt.Errorf("applying restrictions: %w", err)
	}
	a.logger.Debug("Option restrictions applied.", "restrict", a.config.Restrict)
	return restore, nil
}
