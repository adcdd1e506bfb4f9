// Package integrationtests runs whole pipelines end to end: a pipeline
// file and workspace on disk, a catalog of test plugins, and the app.
package integrationtests

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/buildgrid/internal/app"
	"github.com/specialistvlad/buildgrid/internal/hcl"
	"github.com/specialistvlad/buildgrid/internal/plugin"
	"github.com/specialistvlad/buildgrid/internal/testutil"
	"github.com/stretchr/testify/require"
)

// harnessResult holds the outcome of one harness run.
type harnessResult struct {
	App       *app.App
	Root      string
	Err       error
	LogOutput string
}

// runPipeline writes files under a temp root, where "pipeline.hcl" is the
// pipeline file and everything under "workspace/" is the build target,
// creates the app with catalog, and runs every declared runtime.
func runPipeline(t *testing.T, files map[string]string, catalog *plugin.Catalog, runtimes ...string) *harnessResult {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "workspace"), 0o755))
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	cfg, err := app.NewConfig(app.Config{
		ConfigPath:    filepath.Join(root, "pipeline.hcl"),
		WorkspacePath: filepath.Join(root, "workspace"),
		Runtimes:      runtimes,
		LogLevel:      "debug",
		LogFormat:     "text",
		SaveWorkspace: true,
	})
	require.NoError(t, err)

	logs := &testutil.SafeBuffer{}
	res := &harnessResult{Root: root}
	t.Cleanup(func() {
		if os.Getenv("BGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	ctx := context.Background()
	a, err := app.NewApp(ctx, logs, cfg, hcl.NewLoader(), app.WithCatalog(catalog))
	if err != nil {
		res.Err = err
		res.LogOutput = logs.String()
		return res
	}
	t.Cleanup(func() { _ = a.Close(ctx) })

	res.App = a
	res.Err = a.Run(ctx)
	res.LogOutput = logs.String()
	return res
}
