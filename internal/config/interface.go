package config

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads the pipeline file at path and translates it into the
	// format-agnostic model. A missing file yields Default().
	Load(ctx context.Context, path string) (*Model, error)
}

// Converter binds raw plugin settings onto the Go types plugins declare.
type Converter interface {
	// DecodeSettings populates target, a pointer to a struct with `cty`
	// field tags, from settings. Unknown keys are an error.
	DecodeSettings(ctx context.Context, settings map[string]cty.Value, target any) error
}
