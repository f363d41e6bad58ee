package physics

import (
	"context"

	"github.com/kilianp07/dualportal/core/model"
)

// OperatingPoint captures the tunable inputs the engine needs to evaluate a
// candidate bridge configuration.
type OperatingPoint struct {
	Frequency1 float64
	Frequency2 float64
	Energy1    float64
	Energy2    float64
}

// Detune returns the frequency offset of portal 2 relative to portal 1.
func (p OperatingPoint) Detune() float64 { return p.Frequency2 - p.Frequency1 }

// Inspection describes what the engine found inside one portal chamber.
type Inspection struct {
	Contents       []string
	RequiredParams map[string]float64
}

// Engine is the external physics collaborator. The orchestrator treats its
// output as opaque and deterministic given inputs. Implementations must
// honour context cancellation on InspectPortal.
type Engine interface {
	// BridgeStrength evaluates the viability of a transport link for the
	// given configuration and returns a scalar in [0, 1].
	BridgeStrength(ctx context.Context, op OperatingPoint) (float64, error)

	// InspectPortal reports the contents of a portal chamber and the
	// parameters a transport of those contents would require.
	InspectPortal(ctx context.Context, id model.PortalID, payload *model.Payload) (Inspection, error)
}
