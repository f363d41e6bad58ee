package control

import (
	"context"
	"time"

	"github.com/kilianp07/dualportal/core/model"
	"github.com/kilianp07/dualportal/core/physics"
	"github.com/kilianp07/dualportal/internal/eventbus"
)

// stubEngine lets tests script the physics collaborator.
type stubEngine struct {
	strength    func(op physics.OperatingPoint) (float64, error)
	inspect     func(ctx context.Context, id model.PortalID, payload *model.Payload) (physics.Inspection, error)
	evaluations int
}

func (e *stubEngine) BridgeStrength(ctx context.Context, op physics.OperatingPoint) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	e.evaluations++
	if e.strength == nil {
		return 1, nil
	}
	return e.strength(op)
}

func (e *stubEngine) InspectPortal(ctx context.Context, id model.PortalID, payload *model.Payload) (physics.Inspection, error) {
	if e.inspect == nil {
		return physics.Inspection{Contents: []string{"chamber empty"}}, nil
	}
	return e.inspect(ctx, id, payload)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)          {}
func (nopLogger) Debugw(string, map[string]any)  {}
func (nopLogger) Infof(string, ...any)           {}
func (nopLogger) Warnf(string, ...any)           {}
func (nopLogger) Errorf(string, ...any)          {}

func newTestOrch(eng physics.Engine, opts Options) (*Orchestrator, *SnapshotBus) {
	if eng == nil {
		eng = &stubEngine{}
	}
	if opts.ScanTimeout == 0 {
		opts.ScanTimeout = time.Second
	}
	bus := eventbus.NewBuffered[model.SimulationSnapshot](64)
	return New(eng, bus, nil, nopLogger{}, opts), bus
}

// powerBoth turns both portals on so lock and sweep preconditions hold.
func powerBoth(o *Orchestrator) {
	if _, err := o.Energy.SetEnergyState(model.Portal1, true); err != nil {
		panic(err)
	}
	if _, err := o.Energy.SetEnergyState(model.Portal2, true); err != nil {
		panic(err)
	}
}
