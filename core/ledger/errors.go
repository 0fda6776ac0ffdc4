package ledger

import (
	"errors"
	"fmt"

	"github.com/kopong25/freightquick/core/model"
	"github.com/kopong25/freightquick/core/oracle"
)

// IneligibleError rejects a driver or load that fails a hard matching
// constraint. It is surfaced to the caller and never retried automatically.
type IneligibleError struct {
	DriverID string
	LoadID   string
	Reason   string
}

func (e *IneligibleError) Error() string {
	if e.DriverID == "" {
		return fmt.Sprintf("load %s ineligible: %s", e.LoadID, e.Reason)
	}
	return fmt.Sprintf("driver %s ineligible for load %s: %s", e.DriverID, e.LoadID, e.Reason)
}

// ConflictError signals an optimistic-version mismatch: another commit raced
// and won. The remedy is to re-fetch matches and retry, not to give up.
type ConflictError struct {
	EntityID string
	Expected uint64
	Actual   uint64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict on %s: expected %d, ledger has %d", e.EntityID, e.Expected, e.Actual)
}

// InvalidTransitionError reports a state-machine violation, e.g. confirming
// an assignment that is already completed.
type InvalidTransitionError struct {
	AssignmentID string
	From         model.AssignmentState
	To           model.AssignmentState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("assignment %s: cannot move from %s to %s", e.AssignmentID, e.From, e.To)
}

func isOracleErr(err error) bool {
	var u *oracle.UnavailableError
	return errors.As(err, &u)
}
