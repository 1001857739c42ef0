package pipe

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/pipesgo/internal/ctxlog"
)

// scope tracks the contexts acquired during one invocation so they can be
// released in LIFO order.
type scope struct {
	acquired []*Context
}

// enter acquires c and then its sub-contexts, outer before inner. A context
// whose OnEnter fails is not recorded, so its OnExit never runs.
func (s *scope) enter(ctx context.Context, c *Context) error {
	logger := ctxlog.FromContext(ctx)
	if c.spec != nil && c.spec.enter != nil {
		fn := c.spec.enter
		logger.Debug("Entering context.", "context", c.name)
		if err := fn(ctx, c); err != nil {
			return fmt.Errorf("entering context '%s': %w", c.name, err)
		}
	}
	s.acquired = append(s.acquired, c)

	for _, child := range c.subContexts() {
		if err := s.enter(ctx, child); err != nil {
			return err
		}
	}
	return nil
}

// release runs OnExit for every acquired context in reverse order of
// acquisition. All hooks run even when some fail; their errors are joined.
func (s *scope) release(ctx context.Context, cause error) error {
	logger := ctxlog.FromContext(ctx)
	var errs []error
	for i := len(s.acquired) - 1; i >= 0; i-- {
		c := s.acquired[i]
		if c.spec == nil || c.spec.exit == nil {
			continue
		}
		fn := c.spec.exit
		logger.Debug("Exiting context.", "context", c.name)
		if err := fn(ctx, c, cause); err != nil {
			logger.Error("🔥 Context release failed.", "context", c.name, "error", err)
			errs = append(errs, fmt.Errorf("exiting context '%s': %w", c.name, err))
		}
	}
	s.acquired = nil
	return errors.Join(errs...)
}
