package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	var out bytes.Buffer

	inv, exit, err := Parse(nil, &out)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, DefaultConfigPath, inv.App.ConfigPath)
	assert.Equal(t, ".", inv.App.WorkspacePath)
	assert.Empty(t, inv.App.Runtimes)
	assert.Equal(t, "json", inv.App.LogFormat)
	assert.Equal(t, "info", inv.App.LogLevel)
	assert.False(t, inv.Init)
}

func TestParse_Flags(t *testing.T) {
	testCases := []struct {
		name          string
		args          []string
		wantConfig    string
		wantWorkspace string
		wantRuntimes  []string
	}{
		{
			name:          "long flags",
			args:          []string{"-config", "p.hcl", "-workspace", "ws", "-runtime", "play, upload"},
			wantConfig:    "p.hcl",
			wantWorkspace: "ws",
			wantRuntimes:  []string{"play", "upload"},
		},
		{
			name:          "shorthands",
			args:          []string{"-c", "short.hcl", "-w", "w2", "-r", "upload,,play"},
			wantConfig:    "short.hcl",
			wantWorkspace: "w2",
			wantRuntimes:  []string{"upload", "play"},
		},
		{
			name:          "positional workspace",
			args:          []string{"-log-format", "TEXT", "target"},
			wantConfig:    DefaultConfigPath,
			wantWorkspace: "target",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			inv, exit, err := Parse(tc.args, &bytes.Buffer{})
			require.NoError(t, err)
			require.False(t, exit)
			assert.Equal(t, tc.wantConfig, inv.App.ConfigPath)
			assert.Equal(t, tc.wantWorkspace, inv.App.WorkspacePath)
			assert.Equal(t, tc.wantRuntimes, inv.App.Runtimes)
		})
	}
}

func TestParse_InitAndSave(t *testing.T) {
	inv, _, err := Parse([]string{"-init", "-save", "-report-url", "http://localhost:3000/socket.io/"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, inv.Init)
	assert.True(t, inv.App.SaveWorkspace)
	assert.Equal(t, "http://localhost:3000/socket.io/", inv.App.ReportURL)
}

func TestParse_Help(t *testing.T) {
	var out bytes.Buffer

	inv, exit, err := Parse([]string{"-h"}, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, inv)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown flag", args: []string{"-nope"}, wantErr: "flag provided but not defined: -nope"},
		{name: "bad level", args: []string{"-log-level", "loud"}, wantErr: `invalid log level "loud"`},
		{name: "bad format", args: []string{"-log-format", "xml"}, wantErr: `invalid log format "xml"`},
		{name: "two workspaces", args: []string{"a", "b"}, wantErr: "expected at most one WORKSPACE argument, got 2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantErr)
		})
	}
}
