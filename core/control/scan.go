package control

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/dualportal/core/model"
)

// ScanService queries a portal's contents through the engine with a bounded
// timeout. Scans never mutate portal state; the outcome is retained only as
// the "last scan" for display.
type ScanService struct {
	orch    *Orchestrator
	timeout time.Duration
}

// ScanPortal inspects the portal chamber. Timeouts and engine failures
// produce an outcome with the Error field set; the orchestrator keeps
// running either way.
func (s *ScanService) ScanPortal(ctx context.Context, id model.PortalID) model.ScanOutcome {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var payload *model.Payload
	_ = s.orch.store.withPortal(id, func(p *model.Portal) error {
		if p.Payload != nil {
			copied := *p.Payload
			payload = &copied
		}
		return nil
	})

	outcome := model.ScanOutcome{PortalID: id, Timestamp: time.Now()}
	inspection, err := s.orch.engine.InspectPortal(ctx, id, payload)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		outcome.Error = ErrScanTimeout.Error()
		s.orch.log.Warnf("scan of portal %d timed out after %s", id, s.timeout)
	case err != nil:
		outcome.Error = err.Error()
		s.orch.log.Warnf("scan of portal %d failed: %v", id, err)
	default:
		outcome.Contents = inspection.Contents
		outcome.RequiredParams = inspection.RequiredParams
	}

	s.orch.store.mu.Lock()
	recorded := outcome
	s.orch.store.lastScan = &recorded
	s.orch.store.mu.Unlock()
	s.orch.record("scan_portal", id, err)
	return outcome
}
