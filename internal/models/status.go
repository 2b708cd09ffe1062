package models

import "fmt"

// RecordStatus is the per-record processing state
type RecordStatus string

const (
	RecordPending     RecordStatus = "pending"
	RecordResearching RecordStatus = "researching"
	RecordSuccess     RecordStatus = "success"
	RecordError       RecordStatus = "error"
	RecordSaved       RecordStatus = "saved"
)

// error -> researching and error -> saved are user-initiated; the batch
// loop itself never moves a record out of error.
var allowedTransitions = map[RecordStatus]map[RecordStatus]bool{
	RecordPending: {
		RecordSuccess: true,
		RecordError:   true,
	},
	RecordResearching: {
		RecordSuccess: true,
		RecordError:   true,
	},
	RecordSuccess: {
		RecordResearching: true,
		RecordSaved:       true,
	},
	RecordError: {
		RecordResearching: true,
		RecordSaved:       true,
	},
	RecordSaved: {
		RecordSaved: true,
	},
}

func CanTransition(from, to RecordStatus) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// Transition moves r to status, rejecting moves outside the state machine.
func (r *Record) Transition(to RecordStatus) error {
	if !CanTransition(r.Status, to) {
		return fmt.Errorf("%w: record %s cannot move from %q to %q", ErrConflict, r.ID, r.Status, to)
	}
	r.Status = to
	return nil
}
