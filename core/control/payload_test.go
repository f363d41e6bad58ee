package control

import (
	"testing"

	"github.com/kilianp07/dualportal/core/model"
)

func TestStagePayloadDerivesMass(t *testing.T) {
	orch, _ := newTestOrch(nil, Options{})
	payload, err := orch.Payload.StagePayload("steel", 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if payload.Material != "steel" || payload.VolumeM3 != 0.5 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.MassKg != 3925.0 {
		t.Fatalf("expected 3925.00 kg, got %g", payload.MassKg)
	}
}

func TestStagePayloadValidation(t *testing.T) {
	orch, _ := newTestOrch(nil, Options{})
	cases := []struct {
		name     string
		material string
		volume   float64
	}{
		{"unknown material", "unobtainium", 1.0},
		{"zero volume", "water", 0},
		{"negative volume", "water", -0.5},
		{"oversized volume", "water", 2.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := orch.Payload.StagePayload(tc.material, tc.volume); !IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCommitPayloadAssignsAndClearsStaging(t *testing.T) {
	orch, _ := newTestOrch(nil, Options{})
	if _, err := orch.Payload.StagePayload("graphite", 0.4); err != nil {
		t.Fatal(err)
	}
	if err := orch.Payload.CommitPayload(model.Portal2); err != nil {
		t.Fatal(err)
	}
	snap := orch.Snapshot()
	if snap.Portal2.Payload == nil || snap.Portal2.Payload.Material != "graphite" {
		t.Fatalf("payload not assigned: %+v", snap.Portal2.Payload)
	}
	if snap.Portal1.Payload != nil {
		t.Fatalf("payload leaked to portal 1")
	}
	// the staging slot is single use
	if err := orch.Payload.CommitPayload(model.Portal1); err != ErrNoPendingPayload {
		t.Fatalf("expected ErrNoPendingPayload, got %v", err)
	}
}

func TestCommitPayloadWithoutStaging(t *testing.T) {
	orch, _ := newTestOrch(nil, Options{})
	if err := orch.Payload.CommitPayload(model.Portal1); err != ErrNoPendingPayload {
		t.Fatalf("expected ErrNoPendingPayload, got %v", err)
	}
}

func TestRestagingReplacesPending(t *testing.T) {
	orch, _ := newTestOrch(nil, Options{})
	if _, err := orch.Payload.StagePayload("water", 1.0); err != nil {
		t.Fatal(err)
	}
	if _, err := orch.Payload.StagePayload("lead", 0.1); err != nil {
		t.Fatal(err)
	}
	if err := orch.Payload.CommitPayload(model.Portal1); err != nil {
		t.Fatal(err)
	}
	if got := orch.Snapshot().Portal1.Payload.Material; got != "lead" {
		t.Fatalf("expected the most recent staging to win, got %q", got)
	}
}

func TestClearAllRemovesPayloads(t *testing.T) {
	orch, _ := newTestOrch(nil, Options{})
	if _, err := orch.Payload.StagePayload("ice", 0.3); err != nil {
		t.Fatal(err)
	}
	if err := orch.Payload.CommitPayload(model.Portal1); err != nil {
		t.Fatal(err)
	}
	if _, err := orch.Payload.StagePayload("ice", 0.3); err != nil {
		t.Fatal(err)
	}
	orch.Payload.ClearAll()
	snap := orch.Snapshot()
	if snap.Portal1.Payload != nil || snap.Portal2.Payload != nil {
		t.Fatalf("payloads survive ClearAll: %+v", snap)
	}
	if err := orch.Payload.CommitPayload(model.Portal2); err != ErrNoPendingPayload {
		t.Fatalf("staging slot survives ClearAll: %v", err)
	}
}
