package metrics

import (
	coremetrics "github.com/kilianp07/dualportal/core/metrics"
	"github.com/kilianp07/dualportal/core/model"
)

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordMutation forwards the event to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordMutation(ev coremetrics.MutationEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordMutation(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSweep forwards sweep events to sinks that record them.
func (m *MultiSink) RecordSweep(ev coremetrics.SweepEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.SweepRecorder); ok {
			if err := rec.RecordSweep(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSnapshot forwards snapshots to sinks that record them.
func (m *MultiSink) RecordSnapshot(snap model.SimulationSnapshot) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.SnapshotRecorder); ok {
			if err := rec.RecordSnapshot(snap); err != nil {
				return err
			}
		}
	}
	return nil
}
