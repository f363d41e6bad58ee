package control

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/dualportal/core/logger"
	"github.com/kilianp07/dualportal/core/metrics"
	"github.com/kilianp07/dualportal/core/model"
	"github.com/kilianp07/dualportal/core/physics"
	"github.com/kilianp07/dualportal/internal/eventbus"
)

// SnapshotBus carries the authoritative snapshot to all observers.
type SnapshotBus = eventbus.Bus[model.SimulationSnapshot]

// Options configures the orchestrator.
type Options struct {
	// DetuneDefault is the initial frequency offset of portal 2 in Hz.
	DetuneDefault float64
	// ScanTimeout bounds a single portal scan. Zero means the 10 s default.
	ScanTimeout time.Duration
	// LockPolicy decides whether a portal may be locked. Nil selects the
	// default policy.
	LockPolicy LockPolicy
}

// Orchestrator owns the state store and exposes the mutating components.
// Every successful mutation ends with a snapshot broadcast on the bus.
type Orchestrator struct {
	store  *StateStore
	engine physics.Engine
	bus    *SnapshotBus
	sink   metrics.Sink
	log    logger.Logger

	Energy  *EnergyController
	Payload *PayloadManager
	Sweep   *SweepOptimizer
	Scan    *ScanService
	Lock    *LockSequencer
	Bridge  *BridgeController
}

// New wires the orchestrator. bus and sink may be nil; a nil sink records
// nothing.
func New(engine physics.Engine, bus *SnapshotBus, sink metrics.Sink, log logger.Logger, opts Options) *Orchestrator {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if opts.ScanTimeout <= 0 {
		opts.ScanTimeout = 10 * time.Second
	}
	policy := opts.LockPolicy
	if policy == nil {
		policy = DefaultLockPolicy{}
	}
	o := &Orchestrator{
		store:  NewStateStore(opts.DetuneDefault),
		engine: engine,
		bus:    bus,
		sink:   sink,
		log:    log,
	}
	o.Energy = &EnergyController{orch: o}
	o.Payload = &PayloadManager{orch: o}
	o.Sweep = &SweepOptimizer{orch: o}
	o.Scan = &ScanService{orch: o, timeout: opts.ScanTimeout}
	o.Lock = &LockSequencer{orch: o, policy: policy}
	o.Bridge = &BridgeController{orch: o}
	return o
}

// Snapshot returns the current authoritative snapshot.
func (o *Orchestrator) Snapshot() model.SimulationSnapshot { return o.store.Snapshot() }

// Initialize resets the apparatus and starts a fresh run.
func (o *Orchestrator) Initialize() model.SimulationSnapshot {
	o.store.reset()
	runID := fmt.Sprintf("run_%s", uuid.NewString()[:8])
	o.store.mu.Lock()
	o.store.status = model.StatusActive
	o.store.runID = runID
	o.store.appendLogLocked(fmt.Sprintf("[INFO] Run %s initialized.", runID))
	o.store.mu.Unlock()
	o.log.Infof("run %s initialized", runID)
	o.record("initialize", 0, nil)
	return o.publish()
}

// Reset returns the whole apparatus to its zero state.
func (o *Orchestrator) Reset() model.SimulationSnapshot {
	o.store.reset()
	o.log.Infof("system reset")
	o.record("reset", 0, nil)
	return o.publish()
}

// publish broadcasts the current snapshot and feeds the snapshot recorder.
func (o *Orchestrator) publish() model.SimulationSnapshot {
	snap := o.store.Snapshot()
	if o.bus != nil {
		o.bus.Publish(snap)
	}
	if rec, ok := o.sink.(metrics.SnapshotRecorder); ok {
		if err := rec.RecordSnapshot(snap); err != nil {
			o.log.Warnf("record snapshot: %v", err)
		}
	}
	return snap
}

// record feeds the mutation sink. A zero portal means a run-level operation.
func (o *Orchestrator) record(op string, portal model.PortalID, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	ev := metrics.MutationEvent{Operation: op, Portal: portal, Outcome: outcome, Time: time.Now()}
	if serr := o.sink.RecordMutation(ev); serr != nil {
		o.log.Warnf("record mutation: %v", serr)
	}
}
