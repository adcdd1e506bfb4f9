package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/buildgrid/internal/app"
)

// DefaultConfigPath is the pipeline file used when -config is not given.
const DefaultConfigPath = "buildgrid.hcl"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Invocation is what the command line asked for.
type Invocation struct {
	App *app.Config
	// Init asks for the default pipeline file to be written to
	// App.ConfigPath instead of running builds.
	Init bool
}

// Parse processes command-line arguments. It returns the invocation, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	flagSet := flag.NewFlagSet("buildgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
buildgrid - Runs plugin-provided build passes in dependency order, per stage and runtime.

Usage:
  buildgrid [options] [WORKSPACE]

Arguments:
  WORKSPACE
    Directory holding *.module.json files. Defaults to the current directory.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", DefaultConfigPath, "Path to the pipeline .hcl file.")
	cFlag := flagSet.String("c", "", "Path to the pipeline .hcl file (shorthand).")
	runtimeFlag := flagSet.String("runtime", "", "Comma-separated runtimes to build, in order. Defaults to every declared runtime.")
	rFlag := flagSet.String("r", "", "Comma-separated runtimes to build (shorthand).")
	workspaceFlag := flagSet.String("workspace", "", "Directory holding *.module.json files.")
	wFlag := flagSet.String("w", "", "Directory holding *.module.json files (shorthand).")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	reportURLFlag := flagSet.String("report-url", "", "socket.io server URL that receives every finished build report.")
	saveFlag := flagSet.Bool("save", false, "Write module configs back to the workspace after a successful build.")
	initFlag := flagSet.Bool("init", false, "Write a default pipeline file to the -config path and exit.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("expected at most one WORKSPACE argument, got %d", flagSet.NArg())}
	}

	workspace := firstNonEmpty(*workspaceFlag, *wFlag, flagSet.Arg(0), ".")

	cfg, err := app.NewConfig(app.Config{
		ConfigPath:    firstNonEmpty(*cFlag, *configFlag),
		WorkspacePath: workspace,
		Runtimes:      splitList(firstNonEmpty(*runtimeFlag, *rFlag)),
		LogFormat:     strings.ToLower(*logFormatFlag),
		LogLevel:      strings.ToLower(*logLevelFlag),
		ReportURL:     *reportURLFlag,
		SaveWorkspace: *saveFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return &Invocation{App: cfg, Init: *initFlag}, false, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
