package app

import (
	"sync"

	"github.com/specialistvlad/buildgrid/internal/plugin"
	"github.com/specialistvlad/buildgrid/plugins/envvars"
	"github.com/specialistvlad/buildgrid/plugins/moduleaudit"
	"github.com/specialistvlad/buildgrid/plugins/print"
)

// corePlugins is the definitive list of all plugins that are compiled into
// the buildgrid binary.
var corePlugins = []plugin.Entry{
	{Name: "envvars", New: func() plugin.Plugin { return envvars.New() }},
	{Name: "moduleaudit", New: func() plugin.Plugin { return moduleaudit.New() }},
	{Name: "print", New: func() plugin.Plugin { return print.New() }},
}

var registerCore sync.Once

// defaultCatalog registers the core plugins into plugin.Default once per
// process and returns it.
func defaultCatalog() *plugin.Catalog {
	registerCore.Do(func() {
		for _, e := range corePlugins {
			plugin.Register(e.Name, e.New)
		}
	})
	return plugin.Default
}
