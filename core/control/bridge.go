package control

import (
	"context"
	"fmt"
	"math"

	"github.com/kilianp07/dualportal/core/model"
)

// Transfer constants: efficiency of the link, fraction of transferred
// energy consumed per portal, and the minimum energy a transfer needs.
const (
	transferEfficiency = 0.8
	transferEnergyCost = 0.1
	transferMinEnergy  = 100.0
)

// TransferResult reports a completed payload transfer.
type TransferResult struct {
	EnergyTransferred float64 `json:"energy_transferred"`
	EnergyConsumed    float64 `json:"energy_consumed"`
	PayloadsCleared   bool    `json:"payloads_cleared"`
}

// BridgeController forms the resonant bridge and executes the payload
// transfer across it. Both operations are gated: bridge formation requires
// transport readiness, transfer requires sufficient bridge strength.
type BridgeController struct {
	orch *Orchestrator
}

// FormBridge asks the engine for the bridge strength at the current
// operating point and stores it. Both portals must be locked.
func (b *BridgeController) FormBridge(ctx context.Context) (float64, error) {
	store := b.orch.store
	store.mu.Lock()
	ready := store.transportReady
	store.mu.Unlock()
	if !ready {
		err := fmt.Errorf("%w: transport readiness requires both portals locked", ErrInvalidState)
		b.orch.record("form_bridge", 0, err)
		return 0, err
	}

	op := store.operatingPoint()
	strength, err := b.orch.engine.BridgeStrength(ctx, op)
	if err != nil {
		eerr := &EngineError{Op: "bridge strength", Err: err}
		b.orch.record("form_bridge", 0, eerr)
		return 0, eerr
	}

	store.mu.Lock()
	store.bridgeStrength = strength
	if strength >= 0.95 {
		store.appendLogLocked("[INFO] Bridge formed at maximum strength.")
	} else {
		store.appendLogLocked(fmt.Sprintf("[INFO] Bridge strength updated: %.2f", strength))
	}
	store.mu.Unlock()
	b.orch.log.Infof("bridge formed with strength %.3f", strength)
	b.orch.record("form_bridge", 0, nil)
	b.orch.publish()
	return strength, nil
}

// TransferPayload executes the transfer across the formed bridge. On
// success both payloads are cleared, the energy cost is deducted from each
// portal, the bridge collapses and the lock sequence is consumed.
func (b *BridgeController) TransferPayload() (TransferResult, error) {
	store := b.orch.store
	var result TransferResult
	err := store.withBoth(func(p1, p2 *model.Portal) error {
		store.mu.Lock()
		defer store.mu.Unlock()
		strength := store.bridgeStrength
		if strength < model.ApprovalThreshold {
			store.appendLogLocked(fmt.Sprintf("TRANSFER FAIL: Bridge strength %.3f < %.1f minimum", strength, model.ApprovalThreshold))
			return fmt.Errorf("%w: bridge strength %.3f below %.1f", ErrInvalidState, strength, model.ApprovalThreshold)
		}
		available := math.Min(p1.EnergyJoules, p2.EnergyJoules)
		transfer := available * strength * transferEfficiency
		if transfer <= transferMinEnergy {
			store.appendLogLocked(fmt.Sprintf("TRANSFER FAIL: Insufficient transfer energy %.1fJ", transfer))
			return fmt.Errorf("%w: transfer energy %.1f J below %.0f J minimum", ErrInvalidState, transfer, transferMinEnergy)
		}
		consumed := transfer * transferEnergyCost
		p1.EnergyJoules = math.Max(0, p1.EnergyJoules-consumed)
		p2.EnergyJoules = math.Max(0, p2.EnergyJoules-consumed)
		p1.Payload = nil
		p2.Payload = nil
		p1.LockState = model.Unlocked
		p2.LockState = model.Unlocked
		store.bridgeStrength = 0
		store.transferEnergy = transfer
		store.transportReady = false
		store.appendLogLocked(fmt.Sprintf("TRANSFER SUCCESS: %.1fJ transferred - payloads cleared", transfer))
		result = TransferResult{EnergyTransferred: transfer, EnergyConsumed: consumed, PayloadsCleared: true}
		return nil
	})
	if err != nil {
		b.orch.record("transfer_payload", 0, err)
		b.orch.publish()
		return TransferResult{}, err
	}
	b.orch.log.Infof("payload transferred (%.1f J)", result.EnergyTransferred)
	b.orch.record("transfer_payload", 0, nil)
	b.orch.publish()
	return result, nil
}
