package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/pipesgo/internal/app"
	"github.com/vk/pipesgo/internal/cli"
	"github.com/vk/pipesgo/internal/pipe"
)

// main is the entrypoint for the pipes application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string, modules ...pipe.Module) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	pipesApp, err := newApp(outW, appConfig, modules...)
	if err != nil {
		return err
	}

	// A panicking pipe body is re-raised once its contexts are released.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panicked: %v", r)
		}
	}()
	return pipesApp.Run(ctx)
}

// newApp builds the app. It panics on module registration errors, so we
// recover here to provide a clean exit message to the user.
func newApp(outW io.Writer, cfg *app.Config, modules ...pipe.Module) (a *app.App, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()
	return app.NewApp(outW, cfg, modules...), nil
}
