package app_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/pipesgo/internal/app"
	"github.com/vk/pipesgo/internal/document"
	"github.com/vk/pipesgo/internal/pipe"
	"github.com/vk/pipesgo/internal/testutil"
)

// counterModule registers `incr`, which adds `by` to the state node
// `counter`, and `fail`, which always fails.
func counterModule() *testutil.SimpleModule {
	incr := pipe.Define("incr", func(_ context.Context, args *pipe.Args) error {
		return args.Handle("counter").Update(func(current any) (any, error) {
			n, ok := document.ToFloat(current)
			if !ok {
				n = 0
			}
			return n + args.GetNumber("by"), nil
		})
	}).
		Param(pipe.DryRunParam).
		Bind("by", pipe.Config("by").Type(pipe.Number).Default(1)).
		Bind("counter", pipe.State("counter").Mutable().Type(pipe.Number))

	fail := pipe.Define("fail", func(context.Context, *pipe.Args) error {
		return errors.New("boom")
	})

	return &testutil.SimpleModule{Unit: "counter", Definitions: []*pipe.Definition{incr, fail}}
}

func TestRun_SharedStateAndOutput(t *testing.T) {
	// --- Arrange ---
	state := `
counter: 1
pipes:
  - incr:
  - incr:
      by: 10
  - incr:
      counter@: other
`

	// --- Act ---
	result := testutil.RunPipeline(t, state, testutil.PipelineOptions{}, counterModule())

	// --- Assert ---
	require.NoError(t, result.Err)
	testutil.AssertPipeRan(t, result, 0, "incr")
	testutil.AssertPipeRan(t, result, 2, "incr")
	out, ok := result.State.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 12, out["counter"])
	assert.EqualValues(t, 1, out["other"])
	assert.Contains(t, result.LogOutput, "state_changed=true")
	assert.Contains(t, result.LogOutput, "run_id=")
}

func TestRun_StateFormats(t *testing.T) {
	testCases := []struct {
		file  string
		state string
	}{
		{"state.json", `{"counter": 1, "pipes": [{"incr": null}]}`},
		{"state.jsonc", "{\n  // one step\n  \"counter\": 1,\n  \"pipes\": [{\"incr\": null}],\n}"},
		{"state.hcl", "counter = 1\npipes = [{ incr = null }]\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.file, func(t *testing.T) {
			result := testutil.RunPipeline(t, tc.state, testutil.PipelineOptions{StateFile: tc.file}, counterModule())

			require.NoError(t, result.Err)
			assert.EqualValues(t, 2, result.State.(map[string]any)["counter"])
		})
	}
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	state := `
counter: 1
pipes:
  - incr:
  - fail:
`

	result := testutil.RunPipeline(t, state, testutil.PipelineOptions{DryRun: true}, counterModule())

	require.NoError(t, result.Err, "fail does not declare dry_run and is skipped")
	assert.Nil(t, result.State)
}

func TestRun_FailFast(t *testing.T) {
	state := `
pipes:
  - fail:
  - incr:
`

	result := testutil.RunPipeline(t, state, testutil.PipelineOptions{}, counterModule())

	require.Error(t, result.Err)
	assert.EqualError(t, result.Err, "pipe 'fail' (step 0) failed: boom")
	assert.NotContains(t, result.LogOutput, "step=1")
	assert.Nil(t, result.State)
}

func TestRun_KeepGoing(t *testing.T) {
	state := `
counter: 0
pipes:
  - fail:
  - incr:
  - fail:
`

	result := testutil.RunPipeline(t, state, testutil.PipelineOptions{KeepGoing: true}, counterModule())

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "pipe 'fail' (step 0) failed: boom")
	assert.Contains(t, result.Err.Error(), "pipe 'fail' (step 2) failed: boom")
	testutil.AssertPipeRan(t, result, 1, "incr")
	assert.Nil(t, result.State, "failed runs do not write the state")
}

func TestRun_UnknownPipeIsFatal(t *testing.T) {
	state := `
pipes:
  - nope:
  - incr:
`

	result := testutil.RunPipeline(t, state, testutil.PipelineOptions{KeepGoing: true}, counterModule())

	require.Error(t, result.Err)
	assert.ErrorIs(t, result.Err, pipe.ErrPipeNotFound)
	assert.EqualError(t, result.Err, "pipe not found: 'nope'")
}

func TestRun_InvalidPlan(t *testing.T) {
	result := testutil.RunPipeline(t, "pipes: {}\n", testutil.PipelineOptions{}, counterModule())

	assert.ErrorIs(t, result.Err, pipe.ErrConfig)
	assert.EqualError(t, result.Err, "invalid pipes configuration: not a sequence: {} (map)")
}

func TestRun_MultipleNamesInSourceOrder(t *testing.T) {
	testCases := []struct {
		file  string
		state string
	}{
		{"state.yaml", "pipes:\n  - zeta: {}\n    alpha: {}\n"},
		{"state.json", `{"pipes": [{"zeta": {}, "alpha": {}}]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.file, func(t *testing.T) {
			result := testutil.RunPipeline(t, tc.state, testutil.PipelineOptions{StateFile: tc.file}, counterModule())

			assert.ErrorIs(t, result.Err, pipe.ErrConfig)
			assert.EqualError(t, result.Err, "invalid pipe configuration: multiple pipe names: zeta, alpha")
		})
	}
}

func TestRun_EmptyState(t *testing.T) {
	result := testutil.RunPipeline(t, "", testutil.PipelineOptions{}, counterModule())

	require.NoError(t, result.Err)
	assert.Contains(t, result.LogOutput, "No pipes found in state")
	assert.Equal(t, map[string]any{}, result.State)
}

func TestRun_ResolutionErrorNamesThePipe(t *testing.T) {
	state := `
pipes:
  - incr:
      by: lots
`

	result := testutil.RunPipeline(t, state, testutil.PipelineOptions{}, counterModule())

	assert.ErrorIs(t, result.Err, pipe.ErrTypeMismatch)
	assert.EqualError(t, result.Err, "pipe 'incr' (step 0) failed: config node type mismatch: 'string' (expected 'number')")
}

func TestRun_MissingStateFile(t *testing.T) {
	cfg, err := app.NewConfig(app.Config{StatePath: t.TempDir() + "/missing.yaml"})
	require.NoError(t, err)

	err = app.NewApp(&bytes.Buffer{}, cfg, counterModule()).Run(context.Background())

	assert.ErrorContains(t, err, "failed to load state")
}

func TestNewApp_PanicsOnDuplicatePipes(t *testing.T) {
	cfg := &app.Config{List: true}

	assert.Panics(t, func() {
		app.NewApp(&bytes.Buffer{}, cfg, counterModule(), counterModule())
	})
}

func TestNewApp_CoreModules(t *testing.T) {
	a := app.NewApp(&bytes.Buffer{}, &app.Config{List: true})

	for _, name := range []string{"print", "env_vars", "http_request", "s3_put", "s3_get", "socketio_emit", "postgres_query"} {
		_, err := a.Registry().Find(name)
		assert.NoError(t, err, name)
	}
}

func TestList(t *testing.T) {
	// --- Arrange ---
	out := &bytes.Buffer{}
	a := app.NewApp(&bytes.Buffer{}, &app.Config{List: true, LogLevel: "error"}, counterModule())

	// --- Act ---
	err := a.List(out)

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, out.String(), "counter/incr\n")
	assert.Contains(t, out.String(), `- by (config "by", number, default 1, override by@)`)
	assert.Contains(t, out.String(), `- counter (state "counter", number, mutable, override counter@)`)
	assert.Contains(t, out.String(), "counter/fail\n    (skipped on dry runs)\n")
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     app.Config
		wantErr string
	}{
		{name: "valid", cfg: app.Config{StatePath: "state.yaml", OutputPath: "out.cbor.zst"}},
		{name: "list without state", cfg: app.Config{List: true}},
		{name: "missing state", cfg: app.Config{}, wantErr: "StatePath is a required configuration field"},
		{name: "unknown state format", cfg: app.Config{StatePath: "state.ini"}, wantErr: "invalid state file"},
		{name: "unknown output format", cfg: app.Config{StatePath: "s.yaml", OutputPath: "out"}, wantErr: "invalid output file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := app.NewConfig(tc.cfg)

			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.cfg, *cfg)
		})
	}
}
