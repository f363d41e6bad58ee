package control

import (
	"fmt"

	"github.com/kilianp07/dualportal/core/model"
)

// LockPolicy decides whether a portal satisfies the readiness preconditions
// for locking. It is a hook external to the state machine itself.
type LockPolicy interface {
	AllowLock(p model.Portal) error
}

// DefaultLockPolicy requires nonzero energy and a loaded payload unless
// empty-payload locking has been explicitly acknowledged.
type DefaultLockPolicy struct {
	AllowEmptyPayload bool
}

func (d DefaultLockPolicy) AllowLock(p model.Portal) error {
	if p.EnergyState == model.EnergyOff || p.EnergyJoules <= 0 {
		return fmt.Errorf("%w: portal %d has no energy", ErrInvalidState, p.ID)
	}
	if p.Payload == nil && !d.AllowEmptyPayload {
		return fmt.Errorf("%w: portal %d has no payload", ErrInvalidState, p.ID)
	}
	return nil
}

// LockSequencer manages per-portal lock state and derives transport
// readiness. The only way from LOCKED back to UNLOCKED is UnlockAll.
type LockSequencer struct {
	orch   *Orchestrator
	policy LockPolicy
}

// LockPortal locks the portal after the policy check. Transport readiness
// is recomputed under both portal locks so the derived flag cannot race a
// concurrent lock on the other portal.
func (l *LockSequencer) LockPortal(id model.PortalID) (bool, error) {
	store := l.orch.store
	err := store.withBoth(func(p1, p2 *model.Portal) error {
		p := p1
		if id == model.Portal2 {
			p = p2
		}
		if p.LockState == model.Locked {
			return fmt.Errorf("%w: portal %d", ErrAlreadyLocked, id)
		}
		if err := l.policy.AllowLock(clonePortal(*p)); err != nil {
			return err
		}
		p.LockState = model.Locked
		store.mu.Lock()
		store.transportReady = p1.LockState == model.Locked && p2.LockState == model.Locked
		store.appendLogLocked(fmt.Sprintf("[INFO] Portal %d locked.", id))
		store.mu.Unlock()
		return nil
	})
	if err != nil {
		l.orch.record("lock_portal", id, err)
		return false, err
	}
	l.orch.log.Infof("portal %d locked", id)
	l.orch.record("lock_portal", id, nil)
	l.orch.publish()
	return true, nil
}

// UnlockAll returns both portals to UNLOCKED, clears transport readiness
// and collapses any formed bridge. Energy and payload state are preserved;
// this is not a reset.
func (l *LockSequencer) UnlockAll() {
	store := l.orch.store
	_ = store.withBoth(func(p1, p2 *model.Portal) error {
		p1.LockState = model.Unlocked
		p2.LockState = model.Unlocked
		store.mu.Lock()
		store.transportReady = false
		store.bridgeStrength = 0
		store.appendLogLocked("[INFO] Portals returned to default (unlocked).")
		store.mu.Unlock()
		return nil
	})
	l.orch.log.Infof("all portals unlocked")
	l.orch.record("unlock_portals", 0, nil)
	l.orch.publish()
}
