package testutil

import (
	"context"

	"github.com/vk/pipesgo/internal/pipe"
)

// NoOpModule registers a single "noop" pipe that declares dry_run and does
// nothing. It's useful for tests that need a valid plan entry.
type NoOpModule struct{}

// Register implements the pipe.Module interface.
func (m *NoOpModule) Register(r *pipe.Registry) error {
	_, err := r.Register("testutil", pipe.Define("noop", func(context.Context, *pipe.Args) error {
		return nil
	}).Param(pipe.DryRunParam))
	return err
}
