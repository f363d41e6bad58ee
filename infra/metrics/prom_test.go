package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/dualportal/core/metrics"
	"github.com/kilianp07/dualportal/core/model"
)

func TestPromSinkRecordMutation(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatal(err)
	}

	events := []coremetrics.MutationEvent{
		{Operation: "energy_control", Portal: model.Portal1, Outcome: "ok"},
		{Operation: "energy_control", Portal: model.Portal1, Outcome: "ok"},
		{Operation: "lock_portal", Portal: model.Portal2, Outcome: "rejected"},
		{Operation: "initialize", Outcome: "ok"},
	}
	for _, ev := range events {
		ev.Time = time.Now()
		if err := sink.RecordMutation(ev); err != nil {
			t.Fatal(err)
		}
	}

	if got := testutil.ToFloat64(sink.mutations.WithLabelValues("energy_control", "1", "ok")); got != 2 {
		t.Fatalf("energy_control counter = %g, want 2", got)
	}
	if got := testutil.ToFloat64(sink.mutations.WithLabelValues("lock_portal", "2", "rejected")); got != 1 {
		t.Fatalf("lock_portal counter = %g, want 1", got)
	}
	// run-level operations carry an empty portal label
	if got := testutil.ToFloat64(sink.mutations.WithLabelValues("initialize", "", "ok")); got != 1 {
		t.Fatalf("initialize counter = %g, want 1", got)
	}
}

func TestPromSinkRecordSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatal(err)
	}
	snap := model.SimulationSnapshot{BridgeStrength: 0.42, TransportReady: true}
	if err := sink.RecordSnapshot(snap); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(sink.bridge); got != 0.42 {
		t.Fatalf("bridge_strength gauge = %g", got)
	}
	if got := testutil.ToFloat64(sink.ready); got != 1 {
		t.Fatalf("transport_ready gauge = %g", got)
	}
}

func TestPromSinkDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatal(err)
	}
	// a second sink on the same registry reuses the existing collectors
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatal(err)
	}
	if err := sink.RecordMutation(coremetrics.MutationEvent{Operation: "reset", Outcome: "ok", Time: time.Now()}); err != nil {
		t.Fatal(err)
	}
}
