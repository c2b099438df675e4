package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/simunit/internal/ctxlog"
	"github.com/vk/simunit/internal/inmemorystore"
	"github.com/vk/simunit/internal/inputdeck"
	"github.com/vk/simunit/internal/params"
	"github.com/vk/simunit/internal/registry"
	"github.com/vk/simunit/internal/runconfig"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	loader   *inputdeck.Loader
	registry *registry.Registry

	// Populated by Setup.
	deck    *inputdeck.Deck
	params  *params.Registry
	options *runconfig.Config
	store   *inmemorystore.Store
}

// NewApp is the constructor for the main application. It returns an App
// with its own isolated logger and a registry holding every unit of
// modules, or of the core modules when none are given. Nothing is loaded
// until Setup.
func NewApp(outW io.Writer, cfg *Config, loader *inputdeck.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	if loader == nil {
		loader = inputdeck.NewLoader()
	}

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "units", reg.Names())

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		loader:   loader,
		registry: reg,
	}
}

// Context attaches the application logger to ctx.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Registry returns the application's unit registry.
func (a *App) Registry() *registry.Registry { return a.registry }

// Deck returns the merged input deck, nil before Setup.
func (a *App) Deck() *inputdeck.Deck { return a.deck }

// Params returns the parameter registry, nil before Setup.
func (a *App) Params() *params.Registry { return a.params }

// Options returns the run configuration, nil before Setup.
func (a *App) Options() *runconfig.Config { return a.options }

// Store returns the package store, nil before Setup.
func (a *App) Store() *inmemorystore.Store { return a.store }
