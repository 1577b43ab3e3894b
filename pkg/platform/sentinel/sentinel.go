package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: entity does not exist in store
//   - ErrAlreadyExists: a keyed insert collided with an existing entity
//   - ErrCapacityReached: a bounded collection is full; nothing was appended
//   - ErrUnavailable: backing service temporarily unavailable
//
// For validation and workflow failures use pkg/domain-errors directly.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrCapacityReached = errors.New("capacity reached")
	ErrUnavailable     = errors.New("unavailable")
)
