// Package workspace is the build target: a root directory plus the module
// configurations persisted under it as *.module.json files.
package workspace

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/fsutil"
	"github.com/specialistvlad/buildgrid/internal/moduleconfig"
)

// ModuleFileExtension is the suffix of persisted module config files.
const ModuleFileExtension = ".module.json"

// Workspace is what a build operates on.
type Workspace struct {
	Root    string
	Modules []*moduleconfig.Module
}

// Load discovers and decodes every module file under root. A missing root
// yields an empty workspace. Files with a malformed envelope abort the load;
// configs that merely fail their schema are kept with Module.Err set.
func Load(ctx context.Context, root string, schemas *moduleconfig.Schemas) (*Workspace, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading workspace...", "root", root)

	ws := &Workspace{Root: root}
	if root == "" {
		return ws, nil
	}

	files, err := fsutil.FindFilesByExtension(root, ModuleFileExtension)
	if err != nil {
		return nil, fmt.Errorf("failed to scan workspace %s: %w", root, err)
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read module file %s: %w", file, err)
		}
		m, err := schemas.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode module file %s: %w", file, err)
		}
		m.Source = file
		ws.Modules = append(ws.Modules, m)
		logger.Debug("Module config loaded.", "file", file, "module", m.Name, "known", m.Known())
	}

	logger.Debug("Workspace loaded.", "root", root, "modules", len(ws.Modules))
	return ws, nil
}

// Module returns the first module with the given name.
func (w *Workspace) Module(name string) (*moduleconfig.Module, bool) {
	if w == nil {
		return nil, false
	}
	for _, m := range w.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Save writes every module that came from a file back to that file.
func (w *Workspace) Save(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	for _, m := range w.Modules {
		if m.Source == "" {
			continue
		}
		data, err := m.MarshalJSON()
		if err != nil {
			return fmt.Errorf("failed to encode module file %s: %w", m.Source, err)
		}
		if err := os.WriteFile(m.Source, data, 0o644); err != nil {
			return fmt.Errorf("failed to write module file %s: %w", m.Source, err)
		}
		logger.Debug("Module config saved.", "file", m.Source, "module", m.Name)
	}
	return nil
}
