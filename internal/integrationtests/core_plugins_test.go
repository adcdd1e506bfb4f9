package integrationtests

import (
	"testing"

	"github.com/specialistvlad/buildgrid/internal/plugin"
	"github.com/specialistvlad/buildgrid/plugins/envvars"
	"github.com/specialistvlad/buildgrid/plugins/moduleaudit"
	"github.com/specialistvlad/buildgrid/plugins/print"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coreCatalog(environ ...string) *plugin.Catalog {
	c := plugin.NewCatalog()
	c.Register("print", func() plugin.Plugin { return print.New() })
	c.Register("moduleaudit", func() plugin.Plugin { return moduleaudit.New() })
	c.Register("envvars", func() plugin.Plugin {
		p := envvars.New()
		p.Environ = func() []string { return environ }
		return p
	})
	return c
}

// TestCorePlugins_EndToEnd runs the bundled plugins against a workspace
// with one known and one foreign module.
func TestCorePlugins_EndToEnd(t *testing.T) {
	// --- Arrange ---
	pipeline := `
runtime "play" {}

plugin "buildgrid.envvars" {
  include = ["CI"]
  prefix  = "env:"
}

plugin "buildgrid.print" {
  title = "Summary"
}
`
	files := map[string]string{
		"pipeline.hcl":                 pipeline,
		"workspace/a/env.module.json":  `{"moduleName":"envvars","config":{"include":["CI","HOME"]}}`,
		"workspace/b/lint.module.json": `{"moduleName":"lint","config":{"level":3}}`,
	}

	// --- Act ---
	result := runPipeline(t, files, coreCatalog("CI=true", "HOME=/root", "PATH=/bin"))

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Contains(t, result.LogOutput, "Summary (play, build ")
	assert.Contains(t, result.LogOutput, `      env:CI = "true"`)
	assert.Contains(t, result.LogOutput, `      env:HOME = "/root"`)
	assert.NotContains(t, result.LogOutput, "env:PATH")
	assert.Contains(t, result.LogOutput, `      modules.known = "1"`)
	assert.Contains(t, result.LogOutput, `      modules.unknown = "1"`)
	assert.Contains(t, result.LogOutput, "code=module-unknown")
}

// TestCorePlugins_InvalidModuleFailsBuild checks that a known module kind
// with a bad config fails the build and the workspace is left untouched.
func TestCorePlugins_InvalidModuleFailsBuild(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"pipeline.hcl":                  "runtime \"play\" {}\n",
		"workspace/p/print.module.json": `{"moduleName":"print","config":{"title":{"nested":true}}}`,
	}

	// --- Act ---
	result := runPipeline(t, files, coreCatalog())

	// --- Assert ---
	require.Error(t, result.Err)
	assert.Contains(t, result.LogOutput, "code=module-invalid")
	assert.Contains(t, result.LogOutput, "Build properties (play, build ")
}

// TestCorePlugins_UnknownSetting checks that a misspelled plugin setting
// stops the app during startup.
func TestCorePlugins_UnknownSetting(t *testing.T) {
	// --- Arrange ---
	pipeline := `
plugin "buildgrid.print" {
  colour = "red"
}
`

	// --- Act ---
	result := runPipeline(t, map[string]string{"pipeline.hcl": pipeline}, coreCatalog())

	// --- Assert ---
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "failed to configure plugin 'buildgrid.print'")
	assert.Contains(t, result.Err.Error(), `unknown setting "colour"`)
	assert.Nil(t, result.App)
}
