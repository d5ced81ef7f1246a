package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and sinks return these
// (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: results file or record does not exist
//   - ErrUnavailable: sink (database, cache, broker) is not reachable
//   - ErrNotConfigured: an enabled integration is missing a required setting
//
// For validation errors (bad bit-length, malformed input), use pkg/domain-errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnavailable   = errors.New("unavailable")
	ErrNotConfigured = errors.New("not configured")
)
