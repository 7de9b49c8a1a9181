package sentinel

import "errors"

// Sentinel errors for store-level facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about stored records, not rule violations:
// - ErrNotFound: record does not exist in the store
// - ErrAlreadyExists: key already holds a record
// - ErrIndexTaken: a secondary-index entry (fingerprint) belongs to another
//   principal
// - ErrCapacityReached: the component's id counter hit its configured cap
//
// Rule violations (age bounds, thresholds, cooldowns) belong to the service
// layer and use pkg/domain-errors directly.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrIndexTaken      = errors.New("index entry taken")
	ErrCapacityReached = errors.New("capacity reached")
)
