package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/specialistvlad/buildgrid/internal/app"
	"github.com/specialistvlad/buildgrid/internal/cli"
	"github.com/specialistvlad/buildgrid/internal/hcl"
)

// main is the entrypoint for the buildgrid application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
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
func run(ctx context.Context, outW io.Writer, args []string) (err error) {
	inv, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	if inv.Init {
		if err := hcl.WriteDefault(inv.App.ConfigPath); err != nil {
			return err
		}
		fmt.Fprintf(outW, "Wrote default pipeline file to %s\n", inv.App.ConfigPath)
		return nil
	}

	// A plugin panicking outside of a pass (in its factory or OnEnable) is
	// turned into an error so the process exits cleanly.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	buildgrid, err := app.NewApp(ctx, outW, inv.App, hcl.NewLoader())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := buildgrid.Close(ctx); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return buildgrid.Run(ctx)
}
