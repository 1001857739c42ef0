package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/pipesgo/internal/ctxlog"
	"github.com/vk/pipesgo/internal/pipe"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *pipe.Registry
	config   *Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Without modules, CoreModules are registered. A module that fails to
// register is a programmer error, so NewApp panics.
func NewApp(outW io.Writer, cfg *Config, modules ...pipe.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	ctxlog.FromContext(ctx).Debug("Logger configured successfully.")

	reg := pipe.NewRegistry()
	if len(modules) == 0 {
		modules = CoreModules(outW)
	}
	if err := reg.Load(modules...); err != nil {
		panic(fmt.Errorf("failed to register modules: %w", err))
	}
	logger.Debug("All Go modules registered.", "modules", len(modules), "pipes", len(reg.Pipes()))

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *pipe.Registry {
	return a.registry
}
