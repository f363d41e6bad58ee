package model

import "fmt"

// Bounds for sweep half-widths.
const (
	SweepEnergyRangeMin = 100.0
	SweepEnergyRangeMax = 5000.0
	SweepFreqRangeMin   = 0.1
	SweepFreqRangeMax   = 2.0
)

// ApprovalThreshold is the minimum bridge strength a sweep optimum must
// reach before it may be committed.
const ApprovalThreshold = 0.5

// SweepConfiguration holds the half-widths around the current operating
// point used to generate the candidate grid.
type SweepConfiguration struct {
	EnergyRangeJ float64 `json:"energy_range"`
	FreqRangeHz  float64 `json:"freq_range"`
}

// Validate checks the half-widths against their permitted bounds.
func (c SweepConfiguration) Validate() error {
	if c.EnergyRangeJ < SweepEnergyRangeMin || c.EnergyRangeJ > SweepEnergyRangeMax {
		return fmt.Errorf("energy range must be in [%g, %g] J, got %g",
			SweepEnergyRangeMin, SweepEnergyRangeMax, c.EnergyRangeJ)
	}
	if c.FreqRangeHz < SweepFreqRangeMin || c.FreqRangeHz > SweepFreqRangeMax {
		return fmt.Errorf("frequency range must be in [%g, %g] Hz, got %g",
			SweepFreqRangeMin, SweepFreqRangeMax, c.FreqRangeHz)
	}
	return nil
}

// SweepResult is one evaluated grid point.
type SweepResult struct {
	Frequency1     float64 `json:"frequency1"`
	Frequency2     float64 `json:"frequency2"`
	Energy1        float64 `json:"energy1"`
	Energy2        float64 `json:"energy2"`
	BridgeStrength float64 `json:"bridgeStrength"`
}

// SweepApproval is the safety-gate verdict derived from a completed sweep.
type SweepApproval struct {
	Approved bool   `json:"approved"`
	Criteria string `json:"criteria"`
	Report   string `json:"report"`
}
