package integrationtests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/pass"
	"github.com/specialistvlad/buildgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoRuntimes = `
runtime "play" {}
runtime "upload" {}

monitor {
  first  = "play"
  second = "upload"
}
`

// TestPipeline_ChainOfAfters checks that after-chains registered out of
// order run in dependency order.
func TestPipeline_ChainOfAfters(t *testing.T) {
	// --- Arrange ---
	trace := &testutil.Trace{}
	p := &testutil.SimplePlugin{Name: "chain", Passes: []pass.Pass{
		testutil.RecordingPass("Z", model.At(model.StageGeneration).After("Y"), trace, true),
		testutil.RecordingPass("X", model.At(model.StageGeneration), trace, true),
		testutil.RecordingPass("Y", model.At(model.StageGeneration).After("X"), trace, true),
	}}

	// --- Act ---
	result := runPipeline(t, map[string]string{"pipeline.hcl": twoRuntimes}, testutil.Catalog(p), "play")

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, []string{"run:X", "run:Y", "run:Z"}, trace.Events)
	assert.Contains(t, result.LogOutput, "Build finished.")
}

// TestPipeline_CycleAbortsBuild checks that a cyclic stage never runs and
// no stage after it runs either.
func TestPipeline_CycleAbortsBuild(t *testing.T) {
	// --- Arrange ---
	trace := &testutil.Trace{}
	p := &testutil.SimplePlugin{Name: "cyclic", Passes: []pass.Pass{
		testutil.RecordingPass("early", model.At(model.StagePre), trace, true),
		testutil.RecordingPass("X", model.At(model.StageTranspose).Before("Y"), trace, true),
		testutil.RecordingPass("Y", model.At(model.StageTranspose).Before("X"), trace, true),
		testutil.RecordingPass("late", model.At(model.StagePost), trace, true),
	}}

	// --- Act ---
	result := runPipeline(t, map[string]string{"pipeline.hcl": twoRuntimes}, testutil.Catalog(p), "play")

	// --- Assert ---
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "1 of 1 builds failed")
	assert.Equal(t, []string{"run:early"}, trace.Events)
	assert.Contains(t, result.LogOutput, "cycle detected involving nodes")
	assert.Contains(t, result.LogOutput, "code=unresolved-order")
}

// TestPipeline_RuntimeRestrictedDependency checks that an after-reference to
// a pass absent from the current runtime is dropped.
func TestPipeline_RuntimeRestrictedDependency(t *testing.T) {
	// --- Arrange ---
	trace := &testutil.Trace{}
	p := &testutil.SimplePlugin{Name: "rt", Passes: []pass.Pass{
		testutil.RecordingPass("X", model.At(model.StageGeneration).On("play"), trace, true),
		testutil.RecordingPass("Y", model.At(model.StageGeneration).After("X"), trace, true),
	}}

	// --- Act ---
	result := runPipeline(t, map[string]string{"pipeline.hcl": twoRuntimes}, testutil.Catalog(p), "play", "upload")

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, []string{"run:X", "run:Y", "run:Y"}, trace.Events)
	assert.Equal(t, 1, result.App.OrderConfirmed())
}

// TestPipeline_FailSoftAndPanics checks all three error tiers in one build.
func TestPipeline_FailSoftAndPanics(t *testing.T) {
	// --- Arrange ---
	trace := &testutil.Trace{}
	p := &testutil.SimplePlugin{Name: "faulty", Passes: []pass.Pass{
		testutil.ErrorPass("fails", model.At(model.StageGeneration), trace),
		testutil.PanicPass("panics", model.At(model.StageGeneration).After("fails"), trace, "nil map write"),
		testutil.RecordingPass("survives", model.At(model.StageGeneration).After("panics"), trace, true),
		testutil.RecordingPass("post", model.At(model.StagePost), trace, true),
	}}

	// --- Act ---
	result := runPipeline(t, map[string]string{"pipeline.hcl": twoRuntimes}, testutil.Catalog(p), "play")

	// --- Assert ---
	require.Error(t, result.Err)
	assert.Equal(t, []string{"run:fails", "run:panics", "run:survives", "run:post"}, trace.Events)
	assert.Contains(t, result.LogOutput, "pass panicked: nil map write")
	assert.Contains(t, result.LogOutput, "intentional failure")
}

// TestPipeline_StageSubset checks that only configured stages run.
func TestPipeline_StageSubset(t *testing.T) {
	// --- Arrange ---
	trace := &testutil.Trace{}
	p := &testutil.SimplePlugin{Name: "stages", Passes: []pass.Pass{
		testutil.RecordingPass("pre", model.At(model.StagePre), trace, true),
		testutil.RecordingPass("gen", model.At(model.StageGeneration), trace, true),
		testutil.RecordingPass("opt", model.At(model.StageOptimization), trace, true),
	}}
	pipeline := `
pipeline {
  stages = ["pre", "optimization"]
}
` + twoRuntimes

	// --- Act ---
	result := runPipeline(t, map[string]string{"pipeline.hcl": pipeline}, testutil.Catalog(p), "upload")

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, []string{"run:pre", "run:opt"}, trace.Events)
}

// TestPipeline_PluginOrderAndDisable checks plugin-level ordering and the
// enabled switch of plugin blocks.
func TestPipeline_PluginOrderAndDisable(t *testing.T) {
	// --- Arrange ---
	trace := &testutil.Trace{}
	late := &testutil.SimplePlugin{Name: "late", Trace: trace, Order: model.At(model.StagePre).After("early")}
	early := &testutil.SimplePlugin{Name: "early", Trace: trace}
	off := &testutil.SimplePlugin{Name: "off", Trace: trace}
	pipeline := twoRuntimes + `
plugin "off" {
  enabled = false
}
`

	// --- Act ---
	result := runPipeline(t, map[string]string{"pipeline.hcl": pipeline}, testutil.Catalog(late, off, early), "play")

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, []string{"enable:early", "enable:late"}, trace.Events)
	assert.Zero(t, off.Enables)
	assert.Contains(t, result.LogOutput, "Plugin disabled by configuration.")
}

// TestPipeline_InvalidPipelineFile checks that configuration errors stop
// the app before any plugin is enabled.
func TestPipeline_InvalidPipelineFile(t *testing.T) {
	// --- Arrange ---
	p := &testutil.SimplePlugin{Name: "never"}
	pipeline := `
pipeline {
  checkpoint_stage = "generation"
  stages           = ["pre", "post"]
}
`

	// --- Act ---
	result := runPipeline(t, map[string]string{"pipeline.hcl": pipeline}, testutil.Catalog(p))

	// --- Assert ---
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "checkpoint stage 'generation' is not one of the configured stages")
	assert.Zero(t, p.Enables)
}

// TestPipeline_PipelineModuleKind checks a module kind declared in the
// pipeline file: it is decoded, and re-encoded on save.
func TestPipeline_PipelineModuleKind(t *testing.T) {
	// --- Arrange ---
	var seen []string
	p := &testutil.SimplePlugin{Name: "reader", Passes: []pass.Pass{
		pass.Func("read", model.At(model.StageGeneration), func(c *pass.Context) bool {
			m, ok := c.Target().Module("texture")
			if !ok || m.Err != nil {
				return false
			}
			seen = append(seen, m.Value.GetAttr("path").AsString())
			return true
		}),
	}}
	pipeline := twoRuntimes + `
module "texture" {
  type = object({ path = string })
}
`
	files := map[string]string{
		"pipeline.hcl":                      pipeline,
		"workspace/tex/a.module.json":       "{ \"moduleName\": \"texture\",\n  \"config\": { \"path\": \"a.png\" } }",
		"workspace/other/later.module.json": `{"moduleName":"later","config":{"keep":  "spacing"}}`,
	}

	// --- Act ---
	result := runPipeline(t, files, testutil.Catalog(p), "play")

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, []string{"a.png"}, seen)

	data, err := os.ReadFile(filepath.Join(result.Root, "workspace/tex/a.module.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"moduleName":"texture","config":{"path":"a.png"}}`, string(data))

	data, err = os.ReadFile(filepath.Join(result.Root, "workspace/other/later.module.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"moduleName":"later","config":{"keep":  "spacing"}}`, string(data))
}
