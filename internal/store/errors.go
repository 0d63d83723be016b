package store

import "errors"

// Sentinel errors returned by the store. Callers classify with errors.Is
// and map them to transport-level responses.
var (
	ErrBedNotFound     = errors.New("bed not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrSectorNotFound  = errors.New("sector not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrStatusUnknown   = errors.New("status not in catalog")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflicting state")

	// ErrConsistency means a bed write committed but the matching history
	// append kept failing. The audit trail is behind the bed state; the
	// caller must surface this rather than treat the transition as clean.
	ErrConsistency = errors.New("history ledger inconsistent with bed state")
)
