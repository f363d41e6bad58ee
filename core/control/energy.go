package control

import (
	"fmt"
	"math"

	"github.com/kilianp07/dualportal/core/model"
)

// EnergyController validates and applies energy and frequency changes per
// portal. All operations are atomic with respect to other mutations on the
// same portal.
type EnergyController struct {
	orch *Orchestrator
}

// SetEnergyState powers a portal's emitters on or off. Turning on seeds the
// default energy only if the previous value was 0; turning off forces the
// energy to 0.
func (c *EnergyController) SetEnergyState(id model.PortalID, on bool) (float64, error) {
	var joules float64
	err := c.orch.store.withPortal(id, func(p *model.Portal) error {
		if on {
			p.EnergyState = model.EnergyOn
			if p.EnergyJoules == 0 {
				p.EnergyJoules = model.DefaultEnergy
			}
		} else {
			p.EnergyState = model.EnergyOff
			p.EnergyJoules = 0
		}
		joules = p.EnergyJoules
		return nil
	})
	if err != nil {
		return 0, err
	}
	c.orch.store.invalidateReadiness()
	c.orch.store.appendLog(fmt.Sprintf("[INFO] Portal %d energy %s (%.0f J).", id, stateWord(on), joules))
	c.orch.log.Infof("portal %d energy state %s", id, stateWord(on))
	c.orch.record("energy_state", id, nil)
	c.orch.publish()
	return joules, nil
}

func stateWord(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// AdjustEnergy adds delta joules to the portal, clamped to the permitted
// range. The portal must be powered on.
func (c *EnergyController) AdjustEnergy(id model.PortalID, delta float64) (float64, error) {
	if delta == 0 || math.Mod(math.Abs(delta), model.EnergyStep) != 0 {
		return 0, &ValidationError{Field: "amount", Reason: fmt.Sprintf("must be a non-zero multiple of %g J", model.EnergyStep)}
	}
	var joules float64
	err := c.orch.store.withPortal(id, func(p *model.Portal) error {
		if p.EnergyState == model.EnergyOff {
			return fmt.Errorf("%w: portal %d energy is off", ErrInvalidState, id)
		}
		p.EnergyJoules = model.ClampEnergy(p.EnergyJoules + delta)
		joules = p.EnergyJoules
		return nil
	})
	if err != nil {
		c.orch.record("adjust_energy", id, err)
		return 0, err
	}
	c.orch.store.invalidateReadiness()
	c.orch.record("adjust_energy", id, nil)
	c.orch.publish()
	return joules, nil
}

// SetFrequency tunes the portal within the Schumann range. The portal must
// be powered on.
func (c *EnergyController) SetFrequency(id model.PortalID, hz float64) (float64, error) {
	var tuned float64
	err := c.orch.store.withPortal(id, func(p *model.Portal) error {
		if p.EnergyState == model.EnergyOff {
			return fmt.Errorf("%w: portal %d energy is off", ErrInvalidState, id)
		}
		p.FrequencyHz = model.ClampFrequency(hz)
		tuned = p.FrequencyHz
		return nil
	})
	if err != nil {
		c.orch.record("set_frequency", id, err)
		return 0, err
	}
	c.orch.record("set_frequency", id, nil)
	c.orch.publish()
	return tuned, nil
}
