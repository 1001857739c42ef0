package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/pipesgo/internal/app"
	"github.com/vk/pipesgo/internal/document"
	"github.com/vk/pipesgo/internal/pipe"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
	// State is the written output document, nil when nothing was written.
	State any
}

// PipelineOptions tweak the app configuration used by RunPipeline.
type PipelineOptions struct {
	DryRun    bool
	KeepGoing bool
	// StateFile names the state file inside the temporary directory; its
	// extension selects the format. Defaults to "state.yaml".
	StateFile string
}

// RunPipeline provides a standardized harness for running a pipeline: it
// writes stateYAML to a temporary state file, runs an App with the given
// modules against it and reads back the output document.
func RunPipeline(t *testing.T, stateSrc string, opts PipelineOptions, modules ...pipe.Module) *HarnessResult {
	t.Helper()
	return RunPipelineWithContext(context.Background(), t, stateSrc, opts, modules...)
}

// RunPipelineWithContext is RunPipeline with a caller-provided context.
func RunPipelineWithContext(ctx context.Context, t *testing.T, stateSrc string, opts PipelineOptions, modules ...pipe.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	name := opts.StateFile
	if name == "" {
		name = "state.yaml"
	}
	statePath := filepath.Join(tmpDir, name)
	require.NoError(t, os.WriteFile(statePath, []byte(stateSrc), 0o644))
	outputPath := filepath.Join(tmpDir, "out."+filepath.Base(name))

	cfg, err := app.NewConfig(app.Config{
		StatePath:  statePath,
		OutputPath: outputPath,
		DryRun:     opts.DryRun,
		KeepGoing:  opts.KeepGoing,
		LogLevel:   "debug",
		LogFormat:  "text",
	})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				if os.Getenv("PIPES_TEST_LOGS") == "true" {
					t.Logf("--- HARNESS RECOVERED PANIC ---\n%q", fmt.Sprintf("%v", r))
				}
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, cfg, modules...)
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(ctx)

	if os.Getenv("PIPES_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	result := &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
	if _, err := os.Stat(outputPath); err == nil {
		result.State, err = document.ReadFile(outputPath)
		require.NoError(t, err)
	}
	return result
}
