package pipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vk/pipesgo/internal/ctxlog"
	"github.com/vk/pipesgo/internal/document"
)

// Pipe is a registered pipe.
type Pipe struct {
	unit          string
	name          string
	help          string
	notes         string
	fn            Func
	params        []*field
	acceptsDryRun bool
}

// Name returns the pipe name.
func (p *Pipe) Name() string { return p.name }

// Unit returns the module the pipe was registered by.
func (p *Pipe) Unit() string { return p.unit }

// QualifiedName returns "unit/name".
func (p *Pipe) QualifiedName() string { return p.unit + "/" + p.name }

// Help returns the one-line description.
func (p *Pipe) Help() string { return p.help }

// Notes returns the free-form documentation.
func (p *Pipe) Notes() string { return p.notes }

// AcceptsDryRun reports whether the pipe declares the dry_run built-in.
func (p *Pipe) AcceptsDryRun() bool { return p.acceptsDryRun }

// Args are the bound parameters of one invocation: the root context plus
// the invocation flags.
type Args struct {
	*Context
	dryRun bool
	logger *slog.Logger
}

// DryRun reports whether the invocation is a dry run.
func (a *Args) DryRun() bool { return a.dryRun }

// Logger returns the invocation logger.
func (a *Args) Logger() *slog.Logger { return a.logger }

// Run invokes the pipe once. config is the invocation's config document;
// state is the shared state document and receives every write made through
// mutable references. A nil config or state is treated as an empty mapping
// private to this call: writes through mutable references still succeed but
// are not observable by the caller, so pass a non-nil state to keep them.
// A nil logger discards output.
func (p *Pipe) Run(ctx context.Context, config, state map[string]any, dryRun bool, logger *slog.Logger) (err error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("pipe", p.name)
	ctx = ctxlog.WithLogger(ctx, logger)
	if config == nil {
		config = map[string]any{}
	}
	if state == nil {
		state = map[string]any{}
	}

	e := &env{config: config, state: document.NewTree(state)}
	root := newBoundContext(p.name, nil)
	if err := bindFields(root, p.params, e, dryRun, logger); err != nil {
		logger.Debug("Parameter resolution failed.", "error", err)
		return err
	}
	args := &Args{Context: root, dryRun: dryRun, logger: logger}

	if dryRun && !p.acceptsDryRun {
		logger.Info("Dry run: skipping pipe that does not support it.")
		return nil
	}

	logger.Debug("▶️ Running pipe.", "dry_run", dryRun)
	s := &scope{}
	defer func() {
		r := recover()
		cause := err
		if r != nil {
			cause = fmt.Errorf("pipe '%s' panicked: %v", p.name, r)
		}
		if releaseErr := s.release(ctx, cause); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
		if r != nil {
			panic(r)
		}
	}()

	for _, child := range root.subContexts() {
		if err = s.enter(ctx, child); err != nil {
			return err
		}
	}

	if err = p.fn(ctx, args); err != nil {
		return err
	}
	logger.Debug("Pipe body returned.")
	return nil
}

// bindFields resolves fields into c in declaration order. Sub-contexts are
// bound completely before they are attached.
func bindFields(c *Context, fields []*field, e *env, dryRun bool, logger *slog.Logger) error {
	for _, f := range fields {
		switch {
		case f.builtin == builtinDryRun:
			c.values[f.name] = dryRun
		case f.builtin == builtinLog:
			c.values[f.name] = logger
		case f.rule != nil:
			v, h, err := f.rule.resolve(e)
			if err != nil {
				logger.Debug("Failed to resolve parameter.", "param", f.name, "error", err)
				return err
			}
			if h != nil {
				c.handles[f.name] = h
			} else {
				c.values[f.name] = v
			}
		case f.context != nil:
			child := newBoundContext(f.context.name, f.context)
			if err := bindFields(child, f.context.fields, e, dryRun, logger); err != nil {
				return err
			}
			c.children[f.name] = child
			c.order = append(c.order, f.name)
		}
	}
	return nil
}
