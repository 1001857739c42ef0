package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/pipesgo/internal/ctxlog"
	"github.com/vk/pipesgo/internal/document"
	"github.com/vk/pipesgo/internal/pipe"
	"github.com/vk/pipesgo/internal/plan"
)

// Run executes the pipeline described by the state file: every plan entry is
// dispatched in order against the shared state document.
func (a *App) Run(ctx context.Context) error {
	logger := a.logger.With("run_id", uuid.NewString())
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("App.Run method started.")

	if a.config.List {
		return a.List(a.outW)
	}

	data, format, err := document.ReadSource(a.config.StatePath)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}
	raw, err := document.Decode(data, format)
	if err != nil {
		return fmt.Errorf("failed to load state: %s: %w", a.config.StatePath, err)
	}
	entries, err := plan.Extract(raw, plan.WithKeyOrder(document.SequenceKeyOrder(data, format, plan.Key)))
	if err != nil {
		return err
	}
	state, _ := raw.(map[string]any)
	if state == nil {
		state = map[string]any{}
	}

	if len(entries) == 0 {
		logger.Warn("No pipes found in state, execution not required.")
	} else {
		logger.Info("🚀 Starting pipeline...", "pipes", len(entries), "dry_run", a.config.DryRun)
	}

	var errs []error
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Unknown or ambiguous pipe names fail the pipeline even with KeepGoing.
		p, err := a.registry.Find(entry.Name)
		if err != nil {
			return err
		}
		if err := a.runPipe(ctx, i, p, entry, state); err != nil {
			if !a.config.KeepGoing {
				return err
			}
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		logger.Error("🔥 Pipeline finished with failures.", "failed", len(errs))
		return errors.Join(errs...)
	}

	if !a.config.DryRun && a.config.OutputPath != "" {
		if err := document.WriteFile(a.config.OutputPath, state); err != nil {
			return fmt.Errorf("failed to write state: %w", err)
		}
		logger.Debug("State written.", "path", a.config.OutputPath)
	}

	logger.Info("🏁 Pipeline finished.")
	return nil
}

// runPipe dispatches one plan entry and logs whether it changed the state.
func (a *App) runPipe(ctx context.Context, step int, p *pipe.Pipe, entry plan.Entry, state map[string]any) error {
	logger := ctxlog.FromContext(ctx).With("step", step)

	before, err := document.Digest(state)
	if err != nil {
		return fmt.Errorf("failed to digest state: %w", err)
	}

	if err := p.Run(ctx, entry.Config, state, a.config.DryRun, logger); err != nil {
		err = fmt.Errorf("pipe '%s' (step %d) failed: %w", entry.Name, step, err)
		logger.Error("🔥 Pipe failed.", "pipe", entry.Name, "error", err)
		return err
	}

	after, err := document.Digest(state)
	if err != nil {
		return fmt.Errorf("failed to digest state: %w", err)
	}
	logger.Info("✅ Pipe finished.", "pipe", entry.Name, "state_changed", before != after, "digest", after[:12])
	return nil
}
