package control

import (
	"fmt"

	"github.com/kilianp07/dualportal/core/model"
)

// PayloadManager stages payloads and assigns them to portals.
type PayloadManager struct {
	orch *Orchestrator
}

// StagePayload validates the material and volume, derives the mass and
// stores the payload in the pending slot.
func (m *PayloadManager) StagePayload(material string, volumeM3 float64) (model.Payload, error) {
	payload, err := model.NewPayload(material, volumeM3)
	if err != nil {
		verr := &ValidationError{Field: "payload", Reason: err.Error()}
		m.orch.record("stage_payload", 0, verr)
		return model.Payload{}, verr
	}
	m.orch.store.mu.Lock()
	m.orch.store.staged = &payload
	m.orch.store.mu.Unlock()
	m.orch.record("stage_payload", 0, nil)
	m.orch.publish()
	return payload, nil
}

// CommitPayload assigns the staged payload to the portal and clears the
// staging slot.
func (m *PayloadManager) CommitPayload(id model.PortalID) error {
	m.orch.store.mu.Lock()
	staged := m.orch.store.staged
	m.orch.store.staged = nil
	m.orch.store.mu.Unlock()
	if staged == nil {
		m.orch.record("commit_payload", id, ErrNoPendingPayload)
		return ErrNoPendingPayload
	}
	err := m.orch.store.withPortal(id, func(p *model.Portal) error {
		p.Payload = staged
		return nil
	})
	if err != nil {
		return err
	}
	m.orch.store.invalidateReadiness()
	m.orch.store.appendLog(fmt.Sprintf("[INFO] Payload %s (%.2f kg) loaded into portal %d.", staged.Material, staged.MassKg, id))
	m.orch.log.Infof("payload %s committed to portal %d", staged.Material, id)
	m.orch.record("commit_payload", id, nil)
	m.orch.publish()
	return nil
}

// ClearAll removes the staged payload and the payloads of both portals.
func (m *PayloadManager) ClearAll() {
	m.orch.store.mu.Lock()
	m.orch.store.staged = nil
	m.orch.store.mu.Unlock()
	_ = m.orch.store.withBoth(func(p1, p2 *model.Portal) error {
		p1.Payload = nil
		p2.Payload = nil
		return nil
	})
	m.orch.store.invalidateReadiness()
	m.orch.record("clear_payloads", 0, nil)
	m.orch.publish()
}
