package pipe

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_DryRun(t *testing.T) {
	// --- Arrange ---
	r := NewRegistry()
	executions := 0
	noDryRun := register(t, r, Define("test_no_dry_run", func(context.Context, *Args) error {
		executions++
		return nil
	}))
	var seen []bool
	withDryRun := register(t, r, Define("test_dry_run", func(_ context.Context, args *Args) error {
		executions++
		seen = append(seen, args.DryRun(), args.GetBool(DryRunParam))
		return nil
	}).Param(DryRunParam))

	// --- Act / Assert ---
	require.NoError(t, run(noDryRun, nil, nil, false))
	assert.Equal(t, 1, executions)

	require.NoError(t, run(noDryRun, nil, nil, true))
	assert.Equal(t, 1, executions, "pipes without dry_run do not run on dry runs")

	require.NoError(t, run(withDryRun, nil, nil, false))
	assert.Equal(t, 2, executions)

	require.NoError(t, run(withDryRun, nil, nil, true))
	assert.Equal(t, 3, executions)
	assert.Equal(t, []bool{false, false, true, true}, seen)
}

func TestRun_DryRunSkipsHooksButResolves(t *testing.T) {
	// --- Arrange ---
	rec := &recorder{}
	p := register(t, NewRegistry(), Define("p", func(context.Context, *Args) error {
		t.Fatal("body must not run")
		return nil
	}).Bind("ctx", innerSpec(rec)))

	// --- Act ---
	errMissing := run(p, map[string]any{}, map[string]any{}, true)
	errOK := run(p, map[string]any{"name": "me"}, map[string]any{}, true)

	// --- Assert ---
	assert.EqualError(t, errMissing, "config node not found: 'name'")
	assert.NoError(t, errOK)
	assert.Empty(t, rec.events)
}

func TestRun_DryRunStillAcquiresContextsOfDryRunPipes(t *testing.T) {
	rec := &recorder{}
	p := register(t, NewRegistry(), Define("p", noop).
		Param(DryRunParam).
		Bind("ctx", rec.spec("client")))

	require.NoError(t, run(p, nil, nil, true))

	assert.Equal(t, []string{"enter client", "exit client"}, rec.events)
}

func TestRun_LogBuiltin(t *testing.T) {
	// --- Arrange ---
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	p := register(t, NewRegistry(), Define("logging", func(_ context.Context, args *Args) error {
		l, ok := args.Get(LogParam).(*slog.Logger)
		require.True(t, ok)
		l.Info("from the body")
		assert.Same(t, l, args.Logger())
		return nil
	}).Param(LogParam))

	// --- Act ---
	err := p.Run(context.Background(), nil, nil, false, logger)

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "from the body")
	assert.Contains(t, buf.String(), "pipe=logging")
}

func TestRun_BuiltinsAreReadOnly(t *testing.T) {
	p := register(t, NewRegistry(), Define("p", func(_ context.Context, args *Args) error {
		return args.Set(DryRunParam, true)
	}).Param(DryRunParam))

	err := run(p, nil, nil, false)

	assert.ErrorIs(t, err, ErrImmutable)
	assert.EqualError(t, err, "can't set attribute 'dry_run'")
}

func TestRun_ParametersResolveInOrder(t *testing.T) {
	// The first failing parameter determines the error.
	p := register(t, NewRegistry(), Define("p", noop).
		Bind("a", Config("a")).
		Bind("b", State("b")))

	err := run(p, map[string]any{}, map[string]any{}, false)

	assert.EqualError(t, err, "config node not found: 'a'")
}

func TestRun_NilStateIsPrivate(t *testing.T) {
	// --- Arrange ---
	var readBack any
	p := register(t, NewRegistry(), Define("writer", func(_ context.Context, args *Args) error {
		if err := args.Set("out", "written"); err != nil {
			return err
		}
		readBack = args.Get("out")
		return nil
	}).Bind("out", State("result").Mutable()))

	// --- Act ---
	err := run(p, nil, nil, false)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "written", readBack, "writes are visible within the invocation")

	// The same write with a caller-owned state lands in it.
	state := map[string]any{}
	require.NoError(t, run(p, nil, state, false))
	assert.Equal(t, map[string]any{"result": "written"}, state)
}
