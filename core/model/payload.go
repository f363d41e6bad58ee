package model

import (
	"fmt"
	"math"
	"sort"
)

// PayloadVolumeMax is the largest payload the chamber accepts, in m³.
const PayloadVolumeMax = 2.0

// densityKgM3 is the fixed material density table in kg/m³.
var densityKgM3 = map[string]float64{
	"water":    1000,
	"ice":      917,
	"graphite": 2250,
	"aluminum": 2700,
	"titanium": 4500,
	"steel":    7850,
	"lead":     11340,
}

// Density looks up the density of a known material.
func Density(material string) (float64, bool) {
	d, ok := densityKgM3[material]
	return d, ok
}

// Materials returns the known material names in stable order.
func Materials() []string {
	names := make([]string, 0, len(densityKgM3))
	for m := range densityKgM3 {
		names = append(names, m)
	}
	sort.Strings(names)
	return names
}

// Payload is an object staged for transport through a portal. MassKg is
// derived from volume and material density, never set directly.
type Payload struct {
	Material string  `json:"material"`
	VolumeM3 float64 `json:"volumeM3"`
	MassKg   float64 `json:"massKg"`
}

// NewPayload validates material and volume and derives the payload mass,
// rounded to two decimals.
func NewPayload(material string, volumeM3 float64) (Payload, error) {
	density, ok := Density(material)
	if !ok {
		return Payload{}, fmt.Errorf("unknown material %q", material)
	}
	if volumeM3 <= 0 || volumeM3 > PayloadVolumeMax {
		return Payload{}, fmt.Errorf("volume must be in (0, %.1f] m³, got %g", PayloadVolumeMax, volumeM3)
	}
	mass := math.Round(volumeM3*density*100) / 100
	return Payload{Material: material, VolumeM3: volumeM3, MassKg: mass}, nil
}
