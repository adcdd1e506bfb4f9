package report

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasSeverity(t *testing.T) {
	r := New()
	r.Log(SeverityError, "compile", "boom")
	r.Log(SeverityInfo, "compile", "done")

	assert.True(t, r.HasSeverity(SeverityError))
	assert.True(t, r.HasSeverity(SeverityInfo))
	assert.False(t, r.HasSeverity(SeverityWarning))
	assert.True(t, r.Failed())
}

func TestAppend_PreservesOrder(t *testing.T) {
	first := New()
	first.Log(SeverityError, "a", "one")
	first.Log(SeverityInfo, "a", "two")

	second := New()
	second.Log(SeverityInfo, "b", "three")

	first.Append(second)
	first.Append(nil)

	entries := first.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"one", "two", "three"}, []string{entries[0].Message, entries[1].Message, entries[2].Message})
	assert.Equal(t, 1, second.Len(), "the appended report is left untouched")
}

func TestHasCode(t *testing.T) {
	r := New()
	r.LogCode(SeverityWarning, "modules", "unknown module kind", "unknown-module")
	r.Warnf("modules", "%d leftovers", 3)

	assert.True(t, r.HasCode("unknown-module"))
	assert.False(t, r.HasCode("pass-failed"))
	assert.False(t, r.Failed())
	assert.Equal(t, "3 leftovers", r.Entries()[1].Message)
}

func TestEntries_ReturnsCopy(t *testing.T) {
	r := New()
	r.Infof("x", "hello")
	entries := r.Entries()
	entries[0].Message = "changed"
	assert.Equal(t, "hello", r.Entries()[0].Message)
}

func TestSeverity_JSON(t *testing.T) {
	raw, err := json.Marshal(Entry{Severity: SeverityWarning, Label: "l", Message: "m"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"severity":"warning","label":"l","message":"m"}`, string(raw))

	var e Entry
	require.NoError(t, json.Unmarshal([]byte(`{"severity":"ERROR","label":"l","message":"m","code":"c"}`), &e))
	assert.Equal(t, SeverityError, e.Severity)
	assert.Equal(t, "c", e.Code)

	assert.Error(t, json.Unmarshal([]byte(`{"severity":"fatal"}`), &e))
}

func TestLogTo(t *testing.T) {
	var sb strings.Builder
	logger := slog.New(slog.NewTextHandler(&sb, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := New()
	r.LogCode(SeverityError, "pass.x", "pass panicked", "pass-panic")
	r.Log(SeverityTrace, "pass.y", "tracing")
	r.LogTo(context.Background(), logger)

	out := sb.String()
	assert.Contains(t, out, `level=ERROR msg="pass panicked" label=pass.x code=pass-panic`)
	assert.Contains(t, out, `level=DEBUG msg=tracing label=pass.y`)
}
