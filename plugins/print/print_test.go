package print

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/buildgrid/internal/moduleconfig"
	"github.com/specialistvlad/buildgrid/internal/pass"
	"github.com/specialistvlad/buildgrid/internal/plugin"
	"github.com/specialistvlad/buildgrid/internal/testutil"
	"github.com/specialistvlad/buildgrid/internal/workspace"
	"github.com/specialistvlad/buildgrid/plugins/properties"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaryPass(t *testing.T, p *Plugin) pass.Pass {
	t.Helper()
	r := plugin.NewRegistrar(ID, testutil.QuietLogger())
	r.Open()
	p.OnEnable(r)
	r.Seal()
	require.Len(t, r.Passes(), 1)
	return r.Passes()[0]
}

func TestSummary(t *testing.T) {
	ctx, _ := testutil.Context(t)
	var out bytes.Buffer
	p := New()
	p.SetOutput(&out)
	c := pass.NewContext(ctx, "b1", "play", nil, nil)
	properties.Of(c).Set("z", "last")
	properties.Of(c).Set("a", "first")

	require.True(t, summaryPass(t, p).Invoke(c))

	want := "Build properties (play, build b1)\n" +
		"      a = \"first\"\n" +
		"      z = \"last\"\n"
	assert.Equal(t, want, out.String())
}

func TestSummary_Empty(t *testing.T) {
	ctx, _ := testutil.Context(t)
	var out bytes.Buffer
	p := New()
	p.Out = &out
	c := pass.NewContext(ctx, "b1", "upload", nil, nil)

	require.True(t, summaryPass(t, p).Invoke(c))
	assert.Contains(t, out.String(), "(none)")
}

func TestSummary_TitleFromWorkspace(t *testing.T) {
	ctx, _ := testutil.Context(t)
	var out bytes.Buffer
	p := New()
	p.Out = &out
	p.Settings().(*Settings).Title = "From settings"

	schemas := moduleconfig.NewSchemas()
	for _, s := range p.ModuleSchemas() {
		schemas.Register(s)
	}
	m, err := schemas.Decode([]byte(`{"moduleName":"print","config":{"title":"From workspace"}}`))
	require.NoError(t, err)
	c := pass.NewContext(ctx, "b1", "play", nil, &workspace.Workspace{Modules: []*moduleconfig.Module{m}})

	require.True(t, summaryPass(t, p).Invoke(c))
	assert.Contains(t, out.String(), "From workspace (play, build b1)")
}
