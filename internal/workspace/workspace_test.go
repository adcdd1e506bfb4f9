package workspace

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/moduleconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func testCtx() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func schemas() *moduleconfig.Schemas {
	s := moduleconfig.NewSchemas()
	s.Register(moduleconfig.Schema{
		Name: "label",
		Type: cty.Object(map[string]cty.Type{"text": cty.String}),
	})
	return s
}

func writeFile(t *testing.T, root, name, content string) string {
	t.Helper()
	p := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/label.module.json", `{"moduleName":"label","config":{"text":"hi"}}`)
	unknown := `{"moduleName":"vendor.extra","config":{"keep":  true}}`
	unknownPath := writeFile(t, root, "b/extra.module.json", unknown)
	writeFile(t, root, "notes.txt", "ignored")

	ws, err := Load(testCtx(), root, schemas())
	require.NoError(t, err)
	require.Len(t, ws.Modules, 2)

	label, ok := ws.Module("label")
	require.True(t, ok)
	assert.True(t, label.Known())

	extra, ok := ws.Module("vendor.extra")
	require.True(t, ok)
	assert.False(t, extra.Known())

	require.NoError(t, ws.Save(testCtx()))
	saved, err := os.ReadFile(unknownPath)
	require.NoError(t, err)
	assert.Equal(t, unknown, string(saved), "unknown modules are written back byte for byte")
}

func TestLoad_MalformedEnvelope(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bad.module.json", `{"config":{}}`)

	_, err := Load(testCtx(), root, schemas())
	require.Error(t, err)
	assert.ErrorIs(t, err, moduleconfig.ErrMissingModuleName)
}

func TestLoad_EmptyRoot(t *testing.T) {
	ws, err := Load(testCtx(), "", schemas())
	require.NoError(t, err)
	assert.Empty(t, ws.Modules)

	_, ok := ws.Module("label")
	assert.False(t, ok)

	var nilWS *Workspace
	_, ok = nilWS.Module("label")
	assert.False(t, ok)
}
