package report

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// Entry is one line of a report. Code is optional and lets callers test for
// specific conditions without matching on message text.
type Entry struct {
	Severity Severity `json:"severity"`
	Label    string   `json:"label"`
	Message  string   `json:"message"`
	Code     string   `json:"code,omitempty"`
}

// Report is an append-only list of entries. It is not safe for concurrent
// use; a build owns exactly one report.
type Report struct {
	entries []Entry
}

// New returns an empty report.
func New() *Report {
	return &Report{}
}

// Add appends a fully formed entry.
func (r *Report) Add(e Entry) {
	r.entries = append(r.entries, e)
}

// Log appends an entry without a code.
func (r *Report) Log(sev Severity, label, message string) {
	r.Add(Entry{Severity: sev, Label: label, Message: message})
}

// LogCode appends an entry carrying a machine-readable code.
func (r *Report) LogCode(sev Severity, label, message, code string) {
	r.Add(Entry{Severity: sev, Label: label, Message: message, Code: code})
}

// Errorf appends an Error entry with a formatted message.
func (r *Report) Errorf(label, format string, args ...any) {
	r.Log(SeverityError, label, fmt.Sprintf(format, args...))
}

// Warnf appends a Warning entry with a formatted message.
func (r *Report) Warnf(label, format string, args ...any) {
	r.Log(SeverityWarning, label, fmt.Sprintf(format, args...))
}

// Infof appends an Info entry with a formatted message.
func (r *Report) Infof(label, format string, args ...any) {
	r.Log(SeverityInfo, label, fmt.Sprintf(format, args...))
}

// Entries returns a copy of the entries in insertion order.
func (r *Report) Entries() []Entry {
	return slices.Clone(r.entries)
}

// Len returns the number of entries.
func (r *Report) Len() int {
	return len(r.entries)
}

// HasSeverity reports whether any entry has exactly the given severity.
func (r *Report) HasSeverity(sev Severity) bool {
	return slices.ContainsFunc(r.entries, func(e Entry) bool { return e.Severity == sev })
}

// HasCode reports whether any entry carries the given code.
func (r *Report) HasCode(code string) bool {
	return slices.ContainsFunc(r.entries, func(e Entry) bool { return e.Code == code })
}

// Failed reports whether the report contains an Error entry.
func (r *Report) Failed() bool {
	return r.HasSeverity(SeverityError)
}

// Append copies the entries of other onto the end of r, preserving order.
// A nil other is a no-op.
func (r *Report) Append(other *Report) {
	if other == nil {
		return
	}
	r.entries = append(r.entries, other.entries...)
}

// LogTo mirrors every entry to logger at the level matching its severity.
func (r *Report) LogTo(ctx context.Context, logger *slog.Logger) {
	for _, e := range r.entries {
		attrs := []any{"label", e.Label}
		if e.Code != "" {
			attrs = append(attrs, "code", e.Code)
		}
		logger.Log(ctx, e.Severity.Level(), e.Message, attrs...)
	}
}
