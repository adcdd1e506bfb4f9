package pass

import (
	"context"
	"io"
	"log/slog"
	"reflect"

	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/report"
	"github.com/specialistvlad/buildgrid/internal/workspace"
)

// Initializer is implemented by features that need the context when they
// are first constructed.
type Initializer interface {
	Init(c *Context)
}

// Context is handed to every pass of one build. It is not safe for
// concurrent use; passes run sequentially.
type Context struct {
	ctx     context.Context
	buildID string
	runtime model.Runtime
	stage   model.Stage
	current model.Identifier
	report  *report.Report
	target  *workspace.Workspace

	features map[reflect.Type]any
	created  []any
}

// NewContext creates the context for one build. ctx must carry a logger.
func NewContext(ctx context.Context, buildID string, rt model.Runtime, rep *report.Report, target *workspace.Workspace) *Context {
	if rep == nil {
		rep = report.New()
	}
	return &Context{
		ctx:      ctx,
		buildID:  buildID,
		runtime:  rt,
		report:   rep,
		target:   target,
		features: make(map[reflect.Type]any),
	}
}

// Context returns the underlying context.Context.
func (c *Context) Context() context.Context { return c.ctx }

// Logger returns the build logger, annotated with the current stage and pass.
func (c *Context) Logger() *slog.Logger {
	logger := ctxlog.FromContext(c.ctx).With("stage", c.stage.String())
	if c.current != "" {
		logger = logger.With("pass", string(c.current))
	}
	return logger
}

// BuildID returns the identifier of the running build.
func (c *Context) BuildID() string { return c.buildID }

// Runtime returns the runtime driving the build.
func (c *Context) Runtime() model.Runtime { return c.runtime }

// Stage returns the stage currently executing.
func (c *Context) Stage() model.Stage { return c.stage }

// Pass returns the identifier of the pass currently executing.
func (c *Context) Pass() model.Identifier { return c.current }

// Report returns the build report.
func (c *Context) Report() *report.Report { return c.report }

// Target returns the workspace the build operates on. It may be nil.
func (c *Context) Target() *workspace.Workspace { return c.target }

// Log appends an entry to the build report.
func (c *Context) Log(sev report.Severity, label, message string) {
	c.report.Log(sev, label, message)
}

// LogCode appends an entry carrying a code to the build report.
func (c *Context) LogCode(sev report.Severity, label, message, code string) {
	c.report.LogCode(sev, label, message, code)
}

// EnterStage is called by the runner before the first pass of a stage.
func (c *Context) EnterStage(stage model.Stage) {
	c.stage = stage
	c.current = ""
}

// EnterPass is called by the runner before each pass is invoked.
func (c *Context) EnterPass(id model.Identifier) {
	c.current = id
}

// Feature returns the build-wide instance of T, constructing it on first
// request. If *T implements Initializer, Init runs after construction and
// the instance is cached only once Init returns; a panicking Init leaves
// nothing behind, so the next request constructs again.
func Feature[T any](c *Context) *T {
	key := reflect.TypeFor[T]()
	if existing, ok := c.features[key]; ok {
		return existing.(*T)
	}
	v := new(T)
	if initializer, ok := any(v).(Initializer); ok {
		initializer.Init(c)
	}
	c.features[key] = v
	c.created = append(c.created, v)
	return v
}

// Close releases every feature that implements io.Closer, newest first.
// Close errors become Warning entries; they never fail the build.
func (c *Context) Close() {
	for i := len(c.created) - 1; i >= 0; i-- {
		closer, ok := c.created[i].(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			c.report.LogCode(report.SeverityWarning, "features",
				"failed to close feature "+reflect.TypeOf(c.created[i]).String()+": "+err.Error(), "feature-close")
		}
	}
	c.features = make(map[reflect.Type]any)
	c.created = nil
}
