// Package ordermonitor watches the order in which runtimes reach a shared
// checkpoint stage.
//
// Two runtimes are expected to drive the pipeline one after the other: First
// and then Second. The monitor remembers the last runtime that completed the
// checkpoint. When Second arrives right after First it signals that the
// expected order was observed and returns to idle. Anything else is recorded
// and tolerated. The monitor is diagnostic only and never blocks a build.
//
// State is process-scoped and cleared only by an explicit Reset, which the
// host calls at session boundaries.
package ordermonitor

import (
	"fmt"

	"github.com/specialistvlad/buildgrid/internal/model"
)

// Observation is the outcome of one checkpoint call.
type Observation int

const (
	// Recorded means the runtime was stored as the last one seen.
	Recorded Observation = iota
	// Repeated means the same runtime passed the checkpoint twice in a row.
	Repeated
	// CorrectOrder means Second followed First. State is back to idle.
	CorrectOrder
	// OutOfOrder means Second arrived without First before it. The runtime
	// is recorded, as for Recorded.
	OutOfOrder
)

// String implements fmt.Stringer.
func (o Observation) String() string {
	switch o {
	case Recorded:
		return "recorded"
	case Repeated:
		return "repeated"
	case CorrectOrder:
		return "correct-order"
	case OutOfOrder:
		return "out-of-order"
	default:
		return fmt.Sprintf("observation(%d)", int(o))
	}
}

// Monitor is the order state machine. It is not safe for concurrent use.
type Monitor struct {
	first, second model.Runtime
	onCorrect     func()

	last model.Runtime
	seen bool
}

// New returns an idle monitor expecting first before second. onCorrect, if
// not nil, is called each time the correct order is observed.
func New(first, second model.Runtime, onCorrect func()) *Monitor {
	return &Monitor{first: first, second: second, onCorrect: onCorrect}
}

// Checkpoint records that rt completed the checkpoint stage.
func (m *Monitor) Checkpoint(rt model.Runtime) Observation {
	switch {
	case m.seen && m.last == rt:
		return Repeated
	case rt == m.second && m.seen && m.last == m.first:
		m.Reset()
		if m.onCorrect != nil {
			m.onCorrect()
		}
		return CorrectOrder
	case rt == m.second:
		m.last, m.seen = rt, true
		return OutOfOrder
	default:
		m.last, m.seen = rt, true
		return Recorded
	}
}

// Last returns the last runtime recorded, and false when idle.
func (m *Monitor) Last() (model.Runtime, bool) {
	return m.last, m.seen
}

// Idle reports whether no runtime is recorded.
func (m *Monitor) Idle() bool {
	return !m.seen
}

// Reset returns the monitor to idle.
func (m *Monitor) Reset() {
	m.last, m.seen = "", false
}
