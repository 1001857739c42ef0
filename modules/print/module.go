// Package print provides the `print` pipe, which renders a state node to
// the module's writer.
package print

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/pipesgo/internal/document"
	"github.com/vk/pipesgo/internal/pipe"
)

// Module implements the pipe.Module interface for this package.
type Module struct {
	// Out receives the rendered values. Defaults to os.Stdout.
	Out io.Writer
}

func (m *Module) out() io.Writer {
	if m.Out == nil {
		return os.Stdout
	}
	return m.Out
}

// onRunPrint renders the value. Printing has no side effects on the state,
// so it also runs on dry runs.
func (m *Module) onRunPrint(ctx context.Context, args *pipe.Args) error {
	logger := args.Logger()

	format, err := document.ParseFormat(args.GetString("format"))
	if err != nil {
		return err
	}
	if format != document.YAML && format != document.JSON {
		return fmt.Errorf("unsupported print format '%s': use 'yaml' or 'json'", format)
	}

	data, err := document.Encode(args.Get("value"), format)
	if err != nil {
		return fmt.Errorf("failed to render value: %w", err)
	}

	logger.Info("Printing value", "format", format, "dry_run", args.DryRun())
	_, err = m.out().Write(data)
	return err
}

// Register registers the pipe with the registry.
func (m *Module) Register(r *pipe.Registry) error {
	_, err := r.Register("print", pipe.Define("print", m.onRunPrint).
		Help("Print a state node.").
		Notes("Use `value@` to point at any node of the state.").
		Param(pipe.DryRunParam).
		Param(pipe.LogParam).
		Bind("value", pipe.State("value").Help("The node to print.")).
		Bind("format", pipe.Config("format").Type(pipe.String).Default("yaml").Help("Output format: yaml or json.")))
	return err
}
