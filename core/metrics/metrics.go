package metrics

import (
	"time"

	"github.com/kilianp07/dualportal/core/model"
)

// MutationEvent represents one state-affecting request to be recorded.
type MutationEvent struct {
	Operation string
	Portal    model.PortalID
	Outcome   string
	Time      time.Time
}

// SweepEvent captures data about one parameter sweep.
type SweepEvent struct {
	Candidates int
	Best       float64
	Approved   bool
	Duration   time.Duration
	Time       time.Time
}

// Sink records mutation events for observability purposes.
type Sink interface {
	RecordMutation(ev MutationEvent) error
}

// SweepRecorder records sweep events. Sinks may implement it in addition
// to Sink.
type SweepRecorder interface {
	RecordSweep(ev SweepEvent) error
}

// SnapshotRecorder records the derived state carried by a snapshot.
type SnapshotRecorder interface {
	RecordSnapshot(snap model.SimulationSnapshot) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordMutation(MutationEvent) error            { return nil }
func (NopSink) RecordSweep(SweepEvent) error                  { return nil }
func (NopSink) RecordSnapshot(model.SimulationSnapshot) error { return nil }
