package model

// Run lifecycle states surfaced in the snapshot.
const (
	StatusIdle   = "idle"
	StatusActive = "active"
)

// SimulationSnapshot is the single read-only projection broadcast to every
// observer after a state-affecting operation.
type SimulationSnapshot struct {
	Status         string         `json:"status"`
	RunID          string         `json:"runId,omitempty"`
	Portal1        Portal         `json:"portal1"`
	Portal2        Portal         `json:"portal2"`
	TransportReady bool           `json:"transportReady"`
	BridgeStrength float64        `json:"bridgeStrength,omitempty"`
	TransferEnergy float64        `json:"transferEnergy,omitempty"`
	Detune         float64        `json:"detune,omitempty"`
	Sweep          *SweepApproval `json:"sweep,omitempty"`
	LastScan       *ScanOutcome   `json:"lastScan,omitempty"`
	StatusLog      []string       `json:"statusLog"`
}
