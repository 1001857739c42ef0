package pipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

const testUnit = "pipe_test"

func register(t *testing.T, r *Registry, d *Definition) *Pipe {
	t.Helper()
	p, err := r.Register(testUnit, d)
	require.NoError(t, err)
	return p
}

func run(p *Pipe, config, state map[string]any, dryRun bool) error {
	return p.Run(context.Background(), config, state, dryRun, nil)
}

func noop(context.Context, *Args) error { return nil }
