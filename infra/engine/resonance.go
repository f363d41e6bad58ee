package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/dualportal/core/model"
	"github.com/kilianp07/dualportal/core/physics"
)

// stabilityFloor is the stability below which the bridge degrades.
const stabilityFloor = 0.9

// Config tunes the reference engine.
type Config struct {
	// InspectDelayMS adds artificial latency to portal inspections.
	InspectDelayMS int `json:"inspect_delay_ms"`
}

// Resonance is the reference physics engine. Bridge strength follows the
// empirical energy-delivery-ratio formula: the delivered energy is measured
// against the minimum required at the current detune, degraded when either
// portal drifts from resonance. Deterministic given inputs.
type Resonance struct {
	inspectDelay time.Duration
}

// NewResonance creates the engine from its configuration.
func NewResonance(cfg Config) *Resonance {
	return &Resonance{inspectDelay: time.Duration(cfg.InspectDelayMS) * time.Millisecond}
}

// BridgeStrength evaluates the configuration and returns a scalar in [0, 1].
func (e *Resonance) BridgeStrength(ctx context.Context, op physics.OperatingPoint) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !inBand(op.Frequency1) || !inBand(op.Frequency2) ||
		op.Energy1 < model.EnergyMin || op.Energy1 > model.EnergyMax ||
		op.Energy2 < model.EnergyMin || op.Energy2 > model.EnergyMax {
		// Safety failure: configuration outside the physical envelope.
		return 0, nil
	}
	if op.Energy1 <= 0 || op.Energy2 <= 0 {
		return 0, nil
	}

	energyInput := math.Min(op.Energy1, op.Energy2)
	minEnergy := op.Energy1 * (1 + math.Abs(op.Detune())/model.ResonanceFrequency)
	s1 := stability(op.Frequency1)
	s2 := stability(op.Frequency2)

	strength := energyInput / (minEnergy * s1)
	strength = math.Max(0, math.Min(1, strength))
	if s1 < stabilityFloor || s2 < stabilityFloor {
		strength *= 0.7
	}
	return strength, nil
}

// stability falls off linearly with drift from resonance across the band.
func stability(freq float64) float64 {
	drift := math.Abs(freq - model.ResonanceFrequency)
	return 1 - drift/(model.FrequencyMax-model.FrequencyMin)
}

func inBand(freq float64) bool {
	return freq >= model.FrequencyMin && freq <= model.FrequencyMax
}

// InspectPortal reports the chamber contents. The configured delay is
// interruptible: cancellation aborts the inspection.
func (e *Resonance) InspectPortal(ctx context.Context, id model.PortalID, payload *model.Payload) (physics.Inspection, error) {
	if e.inspectDelay > 0 {
		timer := time.NewTimer(e.inspectDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return physics.Inspection{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return physics.Inspection{}, err
	}

	if payload == nil {
		return physics.Inspection{Contents: []string{"chamber empty"}}, nil
	}
	contents := []string{
		fmt.Sprintf("%s, %.3f m³", payload.Material, payload.VolumeM3),
		fmt.Sprintf("mass %.2f kg", payload.MassKg),
	}
	required := map[string]float64{
		"min_energy_j":     math.Max(model.DefaultEnergy, math.Round(payload.MassKg*10)),
		"target_frequency": model.ResonanceFrequency,
	}
	return physics.Inspection{Contents: contents, RequiredParams: required}, nil
}
