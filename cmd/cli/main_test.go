package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ConfigError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	invalidHCL := `
		pipeline {
			stages = ["pre"
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "pipeline.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0o600), "failed to set up test file")

	args := []string{"-c", filePath, tempDir}
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, args)

	// --- Assert ---
	require.Error(t, runErr)
	assert.Contains(t, runErr.Error(), "failed to load configuration")
	assert.Contains(t, runErr.Error(), "failed to parse HCL file")
}

func TestRun_Init(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "buildgrid.hcl")
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"-init", "-config", path})

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Wrote default pipeline file")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `runtime "play"`)

	// A second -init must not clobber the file.
	err = run(context.Background(), out, []string{"-init", "-config", path})
	assert.ErrorContains(t, err, "failed to create pipeline file")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_UnknownRuntime(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	args := []string{"-c", filepath.Join(dir, "missing.hcl"), "-r", "edit", "-log-level", "error", dir}

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runtime 'edit' is not declared")
}
