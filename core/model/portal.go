package model

import (
	"fmt"
	"math"
)

// PortalID identifies one of the two portals of the apparatus.
type PortalID int

const (
	Portal1 PortalID = 1
	Portal2 PortalID = 2
)

// ParsePortalID validates an identity received at the boundary.
func ParsePortalID(n int) (PortalID, error) {
	if n != int(Portal1) && n != int(Portal2) {
		return 0, fmt.Errorf("portal id must be 1 or 2, got %d", n)
	}
	return PortalID(n), nil
}

// Index returns the zero-based slot of the portal in fixed-size arrays.
func (id PortalID) Index() int { return int(id) - 1 }

// EnergyState indicates whether a portal's emitters are powered.
type EnergyState string

const (
	EnergyOff EnergyState = "OFF"
	EnergyOn  EnergyState = "ON"
)

// LockState indicates whether a portal is locked for transport.
type LockState string

const (
	Unlocked LockState = "UNLOCKED"
	Locked   LockState = "LOCKED"
)

// Physical bounds of a single portal.
const (
	EnergyMin     = 0.0
	EnergyMax     = 20000.0
	EnergyStep    = 100.0
	DefaultEnergy = 1000.0

	// Schumann range: the permitted tuning band in Hz.
	FrequencyMin  = 7.00
	FrequencyMax  = 8.50
	FrequencyStep = 0.01

	// ResonanceFrequency is the nominal operating frequency in Hz.
	ResonanceFrequency = 7.83
)

// Portal is the authoritative state of one portal.
type Portal struct {
	ID           PortalID    `json:"id"`
	EnergyState  EnergyState `json:"energyState"`
	EnergyJoules float64     `json:"energyJoules"`
	FrequencyHz  float64     `json:"frequencyHz"`
	LockState    LockState   `json:"lockState"`
	Payload      *Payload    `json:"payload"`
}

// ClampEnergy bounds an energy value to [EnergyMin, EnergyMax] and snaps it
// to the configured step.
func ClampEnergy(j float64) float64 {
	j = math.Round(j/EnergyStep) * EnergyStep
	return math.Min(EnergyMax, math.Max(EnergyMin, j))
}

// ClampFrequency bounds a frequency to the Schumann range and snaps it to
// the 0.01 Hz step.
func ClampFrequency(hz float64) float64 {
	hz = math.Round(hz/FrequencyStep) * FrequencyStep
	return math.Min(FrequencyMax, math.Max(FrequencyMin, hz))
}
