package control

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/dualportal/core/metrics"
	"github.com/kilianp07/dualportal/core/model"
	"github.com/kilianp07/dualportal/core/physics"
)

// sweepGridSteps is the number of offsets per swept dimension.
const sweepGridSteps = 5

// applyEpsilon tolerates float round-trips when a client echoes the optimum
// back for commit.
const applyEpsilon = 1e-6

// SweepOptimizer drives the physics engine across a parameter grid and
// gates the commit of the optimum behind the safety threshold. The protocol
// is look-before-commit: RunSweep captures a result set, Evaluate computes
// an approval keyed to exactly that set, ApplyOptimal refuses anything else.
type SweepOptimizer struct {
	orch *Orchestrator
}

// RunSweep evaluates a grid of candidate configurations centred on the
// current operating point. It reads the operating point once, then computes
// off-lock; portals are not mutated. Any prior approval is discarded.
func (s *SweepOptimizer) RunSweep(ctx context.Context, cfg model.SweepConfiguration) ([]model.SweepResult, error) {
	if err := cfg.Validate(); err != nil {
		verr := &ValidationError{Field: "sweep configuration", Reason: err.Error()}
		s.orch.record("parameter_sweep", 0, verr)
		return nil, verr
	}
	op := s.orch.store.operatingPoint()

	freqOffsets := make([]float64, sweepGridSteps)
	floats.Span(freqOffsets, -cfg.FreqRangeHz, cfg.FreqRangeHz)
	energyOffsets := make([]float64, sweepGridSteps)
	floats.Span(energyOffsets, -cfg.EnergyRangeJ, cfg.EnergyRangeJ)

	start := time.Now()
	results := make([]model.SweepResult, 0, sweepGridSteps*sweepGridSteps)
	for _, fo := range freqOffsets {
		for _, eo := range energyOffsets {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			cand := physics.OperatingPoint{
				Frequency1: model.ClampFrequency(op.Frequency1 + fo),
				Frequency2: model.ClampFrequency(op.Frequency2 + fo),
				Energy1:    model.ClampEnergy(op.Energy1 + eo),
				Energy2:    model.ClampEnergy(op.Energy2 + eo),
			}
			strength, err := s.orch.engine.BridgeStrength(ctx, cand)
			if err != nil {
				eerr := &EngineError{Op: "bridge strength", Err: err}
				s.orch.record("parameter_sweep", 0, eerr)
				return nil, eerr
			}
			results = append(results, model.SweepResult{
				Frequency1:     cand.Frequency1,
				Frequency2:     cand.Frequency2,
				Energy1:        cand.Energy1,
				Energy2:        cand.Energy2,
				BridgeStrength: strength,
			})
		}
	}

	store := s.orch.store
	store.mu.Lock()
	store.sweep = sweepState{phase: sweepPending, results: results, duration: time.Since(start)}
	store.appendLogLocked(fmt.Sprintf("[INFO] Sweep evaluated %d candidate configurations.", len(results)))
	store.mu.Unlock()
	s.orch.log.Infof("sweep produced %d candidates in %s", len(results), time.Since(start))
	s.orch.record("parameter_sweep", 0, nil)
	return results, nil
}

// Evaluate computes the safety-gate verdict for the most recent sweep. An
// absent or empty result set yields an error: the outcome is undetermined,
// neither approved nor rejected.
func (s *SweepOptimizer) Evaluate() (model.SweepApproval, error) {
	store := s.orch.store
	store.mu.Lock()
	if store.sweep.phase == sweepNone || len(store.sweep.results) == 0 {
		store.mu.Unlock()
		err := fmt.Errorf("%w: no sweep results to evaluate", ErrInvalidState)
		s.orch.record("evaluate_sweep", 0, err)
		return model.SweepApproval{}, err
	}
	strengths := make([]float64, len(store.sweep.results))
	for i, r := range store.sweep.results {
		strengths[i] = r.BridgeStrength
	}
	best := floats.MaxIdx(strengths)
	maxStrength := strengths[best]
	meanStrength := stat.Mean(strengths, nil)

	approval := model.SweepApproval{
		Approved: maxStrength >= model.ApprovalThreshold,
		Criteria: fmt.Sprintf("max bridge strength >= %.2f", model.ApprovalThreshold),
	}
	verdict := "FAIL"
	if approval.Approved {
		verdict = "PASS"
	}
	approval.Report = fmt.Sprintf("%d candidates, max %.3f, mean %.3f: %s",
		len(strengths), maxStrength, meanStrength, verdict)

	store.sweep.phase = sweepEvaluated
	store.sweep.optimal = store.sweep.results[best]
	store.sweep.approval = approval
	duration := store.sweep.duration
	store.appendLogLocked(fmt.Sprintf("[INFO] Sweep verdict: %s", approval.Report))
	store.mu.Unlock()

	if rec, ok := s.orch.sink.(metrics.SweepRecorder); ok {
		ev := metrics.SweepEvent{
			Candidates: len(strengths),
			Best:       maxStrength,
			Approved:   approval.Approved,
			Duration:   duration,
			Time:       time.Now(),
		}
		if err := rec.RecordSweep(ev); err != nil {
			s.orch.log.Warnf("record sweep: %v", err)
		}
	}
	s.orch.record("evaluate_sweep", 0, nil)
	s.orch.publish()
	return approval, nil
}

// ApplyOptimal commits the approved optimum to both portals. The requested
// values must match the stored optimum of the evaluated result set; stale or
// unevaluated parameters are rejected before any mutation. The commit writes
// frequencies and energies directly, bypassing the ON-state guard, and
// powers both portals on.
func (s *SweepOptimizer) ApplyOptimal(requested model.SweepResult) error {
	store := s.orch.store
	err := store.withBoth(func(p1, p2 *model.Portal) error {
		store.mu.Lock()
		defer store.mu.Unlock()
		if store.sweep.phase != sweepEvaluated {
			return fmt.Errorf("%w: sweep has not been evaluated", ErrSweepNotApproved)
		}
		if !store.sweep.approval.Approved {
			return fmt.Errorf("%w: %s", ErrSweepNotApproved, store.sweep.approval.Report)
		}
		opt := store.sweep.optimal
		if !closeTo(requested.Frequency1, opt.Frequency1) ||
			!closeTo(requested.Frequency2, opt.Frequency2) ||
			!closeTo(requested.Energy1, opt.Energy1) ||
			!closeTo(requested.Energy2, opt.Energy2) {
			return &ValidationError{Field: "parameters", Reason: "do not match the evaluated optimum"}
		}
		p1.FrequencyHz = opt.Frequency1
		p2.FrequencyHz = opt.Frequency2
		p1.EnergyJoules = opt.Energy1
		p2.EnergyJoules = opt.Energy2
		p1.EnergyState = model.EnergyOn
		p2.EnergyState = model.EnergyOn
		store.sweep.applied = true
		store.transportReady = p1.LockState == model.Locked && p2.LockState == model.Locked
		store.appendLogLocked(fmt.Sprintf("[INFO] Optimal parameters applied (bridge strength %.3f).", opt.BridgeStrength))
		return nil
	})
	if err != nil {
		s.orch.record("apply_optimal", 0, err)
		return err
	}
	s.orch.log.Infof("optimal sweep parameters applied")
	s.orch.record("apply_optimal", 0, nil)
	s.orch.publish()
	return nil
}

func closeTo(a, b float64) bool { return math.Abs(a-b) <= applyEpsilon }
