package engine

import (
	"errors"

	"github.com/skysentinel/engine/graph"
)

// Sentinel errors re-exported from the graph package so facade callers
// can classify failures with errors.Is without importing graph directly.
var (
	// ErrQueryFailure indicates a transient store failure. Callers may
	// retry.
	ErrQueryFailure = graph.ErrQueryFailure

	// ErrTenantMismatch indicates cross-tenant data surfaced in a query
	// result. This is fatal and must never be retried into acceptance.
	ErrTenantMismatch = graph.ErrTenantMismatch

	// ErrResourceNotFound indicates a referenced resource does not
	// exist.
	ErrResourceNotFound = graph.ErrResourceNotFound
)

// ErrInvalidConfig indicates the engine was constructed with an invalid
// configuration.
var ErrInvalidConfig = errors.New("invalid engine configuration")
