package control

import (
	"errors"
	"fmt"
)

// Sentinel errors for state-machine violations. Handlers map these onto
// HTTP status codes; none of them leaves partial state behind.
var (
	// ErrInvalidState rejects an operation not permitted in the current
	// state machine position, e.g. adjusting energy while OFF.
	ErrInvalidState = errors.New("invalid state")

	// ErrAlreadyLocked rejects locking a portal that is already locked.
	ErrAlreadyLocked = errors.New("portal already locked")

	// ErrNoPendingPayload rejects committing when nothing is staged.
	ErrNoPendingPayload = errors.New("no pending payload")

	// ErrSweepNotApproved rejects a commit whose safety gate is not
	// satisfied.
	ErrSweepNotApproved = errors.New("sweep not approved")

	// ErrScanTimeout marks a scan whose bounded wait expired.
	ErrScanTimeout = errors.New("timeout")
)

// ValidationError rejects out-of-range or malformed input before any
// mutation takes place.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// EngineError wraps a failure reported by the external physics engine. The
// message is passed through verbatim.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }
