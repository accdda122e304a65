package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about stored resources, not validation
// failures:
// - ErrNotFound: row does not exist in the store
// - ErrConflict: a storage-enforced uniqueness guarantee rejected the write
// - ErrUnavailable: backing service temporarily unreachable
//
// For validation errors (bad input, business-rule rejections), use
// pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
