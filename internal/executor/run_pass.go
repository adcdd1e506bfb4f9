package executor

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/pass"
	"github.com/specialistvlad/buildgrid/internal/report"
)

// invoke runs a single pass. A panic becomes an Error entry plus a Debug
// entry holding the stack.
func (e *Executor) invoke(ctx context.Context, pc *pass.Context, p pass.Pass) {
	id := p.ID()
	logger := ctxlog.FromContext(ctx).With("stage", pc.Stage().String(), "pass", string(id))
	logger.Info("▶️ Starting pass")

	pc.EnterPass(id)
	errorsBefore := countErrors(pc.Report())

	ok, panicked := safeInvoke(p, pc)
	if panicked != nil {
		logger.Error("❌ Pass panicked", "panic", panicked.value)
		pc.LogCode(report.SeverityError, string(id), fmt.Sprintf("pass panicked: %v", panicked.value), CodePassPanic)
		pc.LogCode(report.SeverityDebug, string(id), string(panicked.stack), CodePassPanic)
		return
	}

	if !ok {
		if countErrors(pc.Report()) == errorsBefore {
			pc.LogCode(report.SeverityError, string(id), "pass reported failure", CodePassFailed)
		}
		logger.Warn("❌ Pass failed")
		return
	}
	logger.Info("✅ Finished pass")
}

type recovered struct {
	value any
	stack []byte
}

func safeInvoke(p pass.Pass, pc *pass.Context) (ok bool, rec *recovered) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			rec = &recovered{value: r, stack: debug.Stack()}
		}
	}()
	return p.Invoke(pc), nil
}

func countErrors(r *report.Report) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Severity == report.SeverityError {
			n++
		}
	}
	return n
}
