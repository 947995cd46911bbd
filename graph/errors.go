package graph

import "errors"

// Sentinel errors for graph store operations.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrQueryFailure indicates a transient store error (connection loss,
	// timeout, temporary unavailability). Callers may retry with backoff.
	//
	// Example:
	//	resources, err := selector.Valid(ctx, tenantID, time.Now())
	//	if errors.Is(err, graph.ErrQueryFailure) {
	//	    // retry with backoff, or surface HTTP 503
	//	}
	ErrQueryFailure = errors.New("graph: query failure")

	// ErrTenantMismatch indicates that a result row does not belong to the
	// requested tenant. This is a store-level isolation bug and is fatal:
	// the query is aborted and the error surfaced loudly, never silently
	// filtered, because leaking one tenant's resources into another's
	// aggregation is a correctness-critical violation.
	ErrTenantMismatch = errors.New("graph: tenant mismatch")

	// ErrSessionClosed indicates an operation on a session that has already
	// been released back to the store.
	ErrSessionClosed = errors.New("graph: session closed")

	// ErrResourceNotFound indicates that a requested resource does not
	// exist or is not currently valid for the tenant.
	ErrResourceNotFound = errors.New("graph: resource not found")
)
