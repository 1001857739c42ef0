// Package env_vars provides the `env_vars` pipe, which copies environment
// variables into the state.
package env_vars

import (
	"context"
	"os"
	"strings"

	"github.com/vk/pipesgo/internal/pipe"
)

// Module implements the pipe.Module interface for this package.
type Module struct {
	// Environ lists the environment as KEY=value pairs. Defaults to os.Environ.
	Environ func() []string
}

// onRunEnvVars stores the variables starting with the configured prefix,
// prefix stripped, as a mapping. It does not declare dry_run, so it does
// not run on dry runs.
func (m *Module) onRunEnvVars(ctx context.Context, args *pipe.Args) error {
	environ := m.Environ
	if environ == nil {
		environ = os.Environ
	}
	prefix := args.GetString("prefix")

	envMap := make(map[string]any)
	for _, e := range environ() {
		key, value, ok := strings.Cut(e, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		if name := strings.TrimPrefix(key, prefix); name != "" {
			envMap[name] = value
		}
	}

	return args.Set("env", envMap)
}

// Register registers the pipe with the registry.
func (m *Module) Register(r *pipe.Registry) error {
	_, err := r.Register("env_vars", pipe.Define("env_vars", m.onRunEnvVars).
		Help("Copy environment variables into the state.").
		Bind("prefix", pipe.Config("prefix").Type(pipe.String).Default("").Help("Only variables with this prefix; the prefix is stripped.")).
		Bind("env", pipe.State("env").Mutable().Help("Destination mapping.")))
	return err
}
