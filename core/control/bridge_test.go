package control

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kilianp07/dualportal/core/model"
	"github.com/kilianp07/dualportal/core/physics"
)

func lockedOrch(t *testing.T, strength float64) *Orchestrator {
	t.Helper()
	eng := &stubEngine{strength: func(physics.OperatingPoint) (float64, error) { return strength, nil }}
	orch, _ := newTestOrch(eng, Options{})
	powerBoth(orch)
	for _, id := range []model.PortalID{model.Portal1, model.Portal2} {
		if _, err := orch.Energy.AdjustEnergy(id, 3000); err != nil {
			t.Fatal(err)
		}
		stagePayloadOn(t, orch, id)
		if _, err := orch.Lock.LockPortal(id); err != nil {
			t.Fatal(err)
		}
	}
	return orch
}

func TestFormBridgeRequiresReadiness(t *testing.T) {
	orch, _ := newTestOrch(nil, Options{})
	powerBoth(orch)
	if _, err := orch.Bridge.FormBridge(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState without locked portals, got %v", err)
	}
}

func TestFormBridgeStoresStrength(t *testing.T) {
	orch := lockedOrch(t, 0.9)
	strength, err := orch.Bridge.FormBridge(context.Background())
	if err != nil {
		t.Fatalf("form bridge: %v", err)
	}
	if strength != 0.9 {
		t.Fatalf("expected strength 0.9, got %g", strength)
	}
	if got := orch.Snapshot().BridgeStrength; got != 0.9 {
		t.Fatalf("snapshot strength %g, want 0.9", got)
	}
}

func TestTransferPayloadSuccess(t *testing.T) {
	orch := lockedOrch(t, 0.9)
	if _, err := orch.Bridge.FormBridge(context.Background()); err != nil {
		t.Fatal(err)
	}
	result, err := orch.Bridge.TransferPayload()
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	// 4000 J per portal: min(4000,4000) * 0.9 * 0.8 = 2880 J transferred.
	if math.Abs(result.EnergyTransferred-2880) > 1e-9 {
		t.Fatalf("expected 2880 J transferred, got %g", result.EnergyTransferred)
	}
	if math.Abs(result.EnergyConsumed-288) > 1e-9 {
		t.Fatalf("expected 288 J consumed, got %g", result.EnergyConsumed)
	}
	snap := orch.Snapshot()
	if snap.Portal1.Payload != nil || snap.Portal2.Payload != nil {
		t.Fatalf("payloads not cleared after transfer")
	}
	if math.Abs(snap.Portal1.EnergyJoules-3712) > 1e-9 {
		t.Fatalf("expected 3712 J left, got %g", snap.Portal1.EnergyJoules)
	}
	if snap.BridgeStrength != 0 {
		t.Fatalf("bridge must collapse after transfer")
	}
	if snap.TransportReady || snap.Portal1.LockState == model.Locked {
		t.Fatalf("lock sequence must be consumed by the transfer")
	}
	if snap.TransferEnergy != result.EnergyTransferred {
		t.Fatalf("snapshot transfer energy %g, want %g", snap.TransferEnergy, result.EnergyTransferred)
	}
}

func TestUnlockAllCollapsesBridge(t *testing.T) {
	orch := lockedOrch(t, 0.9)
	if _, err := orch.Bridge.FormBridge(context.Background()); err != nil {
		t.Fatal(err)
	}
	orch.Lock.UnlockAll()
	if got := orch.Snapshot().BridgeStrength; got != 0 {
		t.Fatalf("bridge strength %g survives unlock", got)
	}
	if _, err := orch.Bridge.TransferPayload(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected rejection after unlock, got %v", err)
	}
}

func TestEnergyMutationCollapsesBridge(t *testing.T) {
	orch := lockedOrch(t, 0.9)
	if _, err := orch.Bridge.FormBridge(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := orch.Energy.AdjustEnergy(model.Portal1, -1000); err != nil {
		t.Fatal(err)
	}
	if got := orch.Snapshot().BridgeStrength; got != 0 {
		t.Fatalf("bridge strength %g survives an energy change", got)
	}
	if _, err := orch.Bridge.TransferPayload(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected rejection after invalidation, got %v", err)
	}
}

func TestTransferPayloadWeakBridge(t *testing.T) {
	orch := lockedOrch(t, 0.3)
	if _, err := orch.Bridge.FormBridge(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := orch.Bridge.TransferPayload(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected rejection below minimum strength, got %v", err)
	}
	snap := orch.Snapshot()
	if snap.Portal1.Payload == nil {
		t.Fatalf("failed transfer must not clear payloads")
	}
}

func TestTransferPayloadInsufficientEnergy(t *testing.T) {
	eng := &stubEngine{strength: func(physics.OperatingPoint) (float64, error) { return 0.9, nil }}
	orch, _ := newTestOrch(eng, Options{LockPolicy: DefaultLockPolicy{AllowEmptyPayload: true}})
	powerBoth(orch)
	// 100 J per portal is below the transfer minimum after losses.
	for _, id := range []model.PortalID{model.Portal1, model.Portal2} {
		if _, err := orch.Energy.AdjustEnergy(id, -900); err != nil {
			t.Fatal(err)
		}
		if _, err := orch.Lock.LockPortal(id); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := orch.Bridge.FormBridge(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := orch.Bridge.TransferPayload(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected rejection for insufficient transfer energy, got %v", err)
	}
}
