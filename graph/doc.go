// Package graph defines the multi-tenant, temporally-versioned resource
// graph model of the posture engine and the contract it expects from the
// underlying graph store.
//
// # Data model
//
// The package models the persisted entities of a cloud security posture
// platform:
//
//   - Resource: a bitemporal cloud resource version with a validity window
//   - Relationship: a typed edge between two resources of the same tenant
//   - Violation: a policy violation with a status lifecycle
//   - Policy: a read-only policy definition
//   - ComplianceReport: per-framework compliance scoring for a tenant
//   - Evaluation: one CI/CD or runtime policy run
//
// The engine owns no persistent state; the graph store owns all entities
// and their temporal history. Old resource versions are retained, never
// deleted. For a given (tenant, logical id) at most one version is
// currently valid at any instant.
//
// # Store contract
//
// Store is the narrow interface the engine consumes: pooled per-call
// session acquisition with point-in-time filtered lookups. Sessions are
// acquired per query and released deterministically on every exit path,
// never held across calls.
//
// # Tenant scoping
//
// Every read flows through Selector, which applies the tenant and validity
// filters of a Scope uniformly and verifies that every returned row
// belongs to the requested tenant. A row from another tenant aborts the
// query with ErrTenantMismatch. Components must not bypass the Selector;
// the scoping invariant is enforced once here, not per call site.
package graph
