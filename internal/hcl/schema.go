package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot decodes every top-level block a pipeline file may contain.
type fileRoot struct {
	Pipeline *pipelineBlock  `hcl:"pipeline,block"`
	Runtimes []*runtimeBlock `hcl:"runtime,block"`
	Monitor  *monitorBlock   `hcl:"monitor,block"`
	Plugins  []*pluginBlock  `hcl:"plugin,block"`
	Modules  []*moduleBlock  `hcl:"module,block"`
}

// pipelineBlock is the `pipeline` block.
type pipelineBlock struct {
	Stages          []string `hcl:"stages,optional"`
	CheckpointStage *string  `hcl:"checkpoint_stage,optional"`
}

// runtimeBlock declares one runtime tag.
type runtimeBlock struct {
	Name string `hcl:"name,label"`
}

// monitorBlock is the `monitor` block.
type monitorBlock struct {
	First  string `hcl:"first"`
	Second string `hcl:"second"`
}

// pluginBlock carries `enabled` plus free-form settings for one plugin.
type pluginBlock struct {
	ID       string   `hcl:"id,label"`
	Enabled  *bool    `hcl:"enabled,optional"`
	Settings hcl.Body `hcl:",remain"`
}

// moduleBlock declares a persisted module kind and its config type.
type moduleBlock struct {
	Name string         `hcl:"name,label"`
	Type hcl.Expression `hcl:"type"`
}
