package graph

import (
	"context"
	"time"

	"github.com/skysentinel/engine/risk"
)

// ResourceFilter selects resource versions. All set fields are combined
// with AND semantics; zero values mean "no restriction".
type ResourceFilter struct {
	// TenantID restricts results to one tenant. Required; stores must
	// reject filters without it.
	TenantID string

	// ValidAt restricts results to versions valid at the given instant.
	// Nil returns all versions, including historical ones.
	ValidAt *time.Time

	// IDs restricts results to the given resource IDs.
	IDs []string

	// Types restricts results to the given resource types.
	Types []string

	// Cloud restricts results to one cloud provider.
	Cloud string

	// Environment restricts results to one deployment environment.
	Environment string
}

// RelationshipFilter selects relationships.
type RelationshipFilter struct {
	// TenantID restricts results to one tenant. Required.
	TenantID string

	// Types restricts results to the given relationship types.
	Types []string
}

// ViolationFilter selects violations. The Since and ResolvedSince fields
// are expected to be index-backed so frequent delta polling does not scan
// full history.
type ViolationFilter struct {
	// TenantID restricts results to one tenant. Required.
	TenantID string

	// Statuses restricts results to the given lifecycle states.
	Statuses []ViolationStatus

	// Severities restricts results to the given severities.
	Severities []risk.Severity

	// Since restricts results to violations with Timestamp >= Since.
	Since time.Time

	// ResolvedSince restricts results to violations with a ResolvedAt
	// >= ResolvedSince.
	ResolvedSince time.Time

	// Limit caps the number of results. Results are ordered by Timestamp
	// descending, so a limit returns the most recent violations.
	Limit int
}

// PolicyFilter selects policies. Policies are platform-global, not
// tenant-scoped.
type PolicyFilter struct {
	// Enabled restricts results by the enabled flag. Nil returns all.
	Enabled *bool
}

// EvaluationFilter selects evaluations. The Since and CompletedSince
// fields are expected to be index-backed.
type EvaluationFilter struct {
	// TenantID restricts results to one tenant. Required.
	TenantID string

	// Statuses restricts results to the given run states.
	Statuses []EvaluationStatus

	// Since restricts results to evaluations with Timestamp >= Since.
	Since time.Time

	// CompletedSince restricts results to evaluations with a CompletedAt
	// >= CompletedSince.
	CompletedSince time.Time

	// Limit caps the number of results. Results are ordered by Timestamp
	// descending.
	Limit int
}

// Session is one scoped unit of read access to the graph store. Sessions
// are acquired per query via Store.Session and must be released with
// Close on every exit path, including errors. A session must not be held
// across engine calls.
//
// Implementations back Session with a pooled store connection; Close
// returns the connection to the pool.
type Session interface {
	// Resources returns the resource versions matching the filter.
	Resources(ctx context.Context, f ResourceFilter) ([]Resource, error)

	// Relationships returns the relationships matching the filter.
	Relationships(ctx context.Context, f RelationshipFilter) ([]Relationship, error)

	// Violations returns the violations matching the filter, ordered by
	// Timestamp descending.
	Violations(ctx context.Context, f ViolationFilter) ([]Violation, error)

	// Policies returns the policies matching the filter.
	Policies(ctx context.Context, f PolicyFilter) ([]Policy, error)

	// ComplianceReports returns all compliance reports for the tenant.
	ComplianceReports(ctx context.Context, tenantID string) ([]ComplianceReport, error)

	// Evaluations returns the evaluations matching the filter, ordered by
	// Timestamp descending.
	Evaluations(ctx context.Context, f EvaluationFilter) ([]Evaluation, error)

	// Close releases the session back to the store. Further use of the
	// session returns ErrSessionClosed.
	Close() error
}

// Store is the narrow contract the posture engine consumes from the graph
// store. The engine treats the store purely as a queryable collaborator:
// point-in-time filtered lookup, relationship reads for bounded-hop
// traversal, and aggregate scans. The storage engine itself (Neo4j or a
// substitute) is outside the engine's scope.
type Store interface {
	// Session acquires a read session from the pool. The returned session
	// must be closed when the query finishes.
	Session(ctx context.Context) (Session, error)

	// Close releases the store and its connection pool.
	Close() error
}
