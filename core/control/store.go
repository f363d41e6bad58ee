package control

import (
	"sync"
	"time"

	"github.com/kilianp07/dualportal/core/model"
	"github.com/kilianp07/dualportal/core/physics"
)

// statusLogMax bounds the status log; the oldest lines are dropped first.
const statusLogMax = 100

type sweepPhase int

const (
	sweepNone      sweepPhase = iota
	sweepPending              // results captured, not yet evaluated
	sweepEvaluated            // approval computed for exactly these results
)

// sweepState is the tagged approval state machine. The approval is keyed to
// the result set it was computed from: re-running a sweep discards it.
type sweepState struct {
	phase    sweepPhase
	results  []model.SweepResult
	optimal  model.SweepResult
	approval model.SweepApproval
	duration time.Duration
	applied  bool
}

// StateStore is the authoritative representation of the two portals and the
// run-level simulation state. Each portal carries its own lock so operations
// on portal 1 and portal 2 proceed independently; run-level fields are
// guarded by mu. Lock order is portal 1, portal 2, then mu.
type StateStore struct {
	portalMu [2]sync.Mutex
	portals  [2]model.Portal

	mu             sync.Mutex
	status         string
	runID          string
	statusLog      []string
	staged         *model.Payload
	lastScan       *model.ScanOutcome
	bridgeStrength float64
	transferEnergy float64
	transportReady bool
	sweep          sweepState

	detuneDefault float64
}

// NewStateStore creates the store in its zero state. detuneDefault is the
// initial frequency offset applied to portal 2.
func NewStateStore(detuneDefault float64) *StateStore {
	s := &StateStore{detuneDefault: detuneDefault, status: model.StatusIdle}
	s.portals[model.Portal1.Index()] = zeroPortal(model.Portal1, 0)
	s.portals[model.Portal2.Index()] = zeroPortal(model.Portal2, detuneDefault)
	return s
}

func zeroPortal(id model.PortalID, detune float64) model.Portal {
	return model.Portal{
		ID:          id,
		EnergyState: model.EnergyOff,
		FrequencyHz: model.ClampFrequency(model.ResonanceFrequency + detune),
		LockState:   model.Unlocked,
	}
}

// withPortal runs fn with the portal's lock held. fn must not acquire the
// other portal's lock.
func (s *StateStore) withPortal(id model.PortalID, fn func(p *model.Portal) error) error {
	i := id.Index()
	s.portalMu[i].Lock()
	defer s.portalMu[i].Unlock()
	return fn(&s.portals[i])
}

// withBoth runs fn with both portal locks held, acquired in global order.
func (s *StateStore) withBoth(fn func(p1, p2 *model.Portal) error) error {
	s.portalMu[0].Lock()
	defer s.portalMu[0].Unlock()
	s.portalMu[1].Lock()
	defer s.portalMu[1].Unlock()
	return fn(&s.portals[0], &s.portals[1])
}

// appendLog appends a status line, dropping the oldest beyond the cap.
func (s *StateStore) appendLog(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLogLocked(line)
}

func (s *StateStore) appendLogLocked(line string) {
	s.statusLog = append(s.statusLog, line)
	if len(s.statusLog) > statusLogMax {
		s.statusLog = s.statusLog[len(s.statusLog)-statusLogMax:]
	}
}

// recomputeReadiness derives TransportReadiness from both lock states. Both
// portal locks must already be held by the caller.
func (s *StateStore) recomputeReadiness(p1, p2 *model.Portal) {
	ready := p1.LockState == model.Locked && p2.LockState == model.Locked
	s.mu.Lock()
	s.transportReady = ready
	s.mu.Unlock()
}

// invalidateReadiness drops TransportReadiness after a mutation that breaks
// a prior lock sequence (energy or payload change on a locked setup). A
// bridge formed against the old configuration collapses with it.
func (s *StateStore) invalidateReadiness() {
	s.mu.Lock()
	s.transportReady = false
	s.bridgeStrength = 0
	s.mu.Unlock()
}

// operatingPoint reads a consistent view of the tunable state. It holds both
// portal locks only for the copy.
func (s *StateStore) operatingPoint() physics.OperatingPoint {
	var op physics.OperatingPoint
	_ = s.withBoth(func(p1, p2 *model.Portal) error {
		op = physics.OperatingPoint{
			Frequency1: p1.FrequencyHz,
			Frequency2: p2.FrequencyHz,
			Energy1:    p1.EnergyJoules,
			Energy2:    p2.EnergyJoules,
		}
		return nil
	})
	return op
}

// Snapshot builds the read-only projection broadcast to observers.
func (s *StateStore) Snapshot() model.SimulationSnapshot {
	s.portalMu[0].Lock()
	defer s.portalMu[0].Unlock()
	s.portalMu[1].Lock()
	defer s.portalMu[1].Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := model.SimulationSnapshot{
		Status:         s.status,
		RunID:          s.runID,
		Portal1:        clonePortal(s.portals[0]),
		Portal2:        clonePortal(s.portals[1]),
		TransportReady: s.transportReady,
		BridgeStrength: s.bridgeStrength,
		TransferEnergy: s.transferEnergy,
		Detune:         s.portals[1].FrequencyHz - s.portals[0].FrequencyHz,
		StatusLog:      append([]string(nil), s.statusLog...),
	}
	if s.sweep.phase == sweepEvaluated {
		approval := s.sweep.approval
		snap.Sweep = &approval
	}
	if s.lastScan != nil {
		scan := *s.lastScan
		snap.LastScan = &scan
	}
	return snap
}

func clonePortal(p model.Portal) model.Portal {
	if p.Payload != nil {
		payload := *p.Payload
		p.Payload = &payload
	}
	return p
}

// reset returns every portal to its zero state and clears run-level state.
func (s *StateStore) reset() {
	_ = s.withBoth(func(p1, p2 *model.Portal) error {
		*p1 = zeroPortal(model.Portal1, 0)
		*p2 = zeroPortal(model.Portal2, s.detuneDefault)
		return nil
	})
	s.mu.Lock()
	s.status = model.StatusIdle
	s.runID = ""
	s.statusLog = nil
	s.staged = nil
	s.lastScan = nil
	s.bridgeStrength = 0
	s.transferEnergy = 0
	s.transportReady = false
	s.sweep = sweepState{}
	s.mu.Unlock()
}
