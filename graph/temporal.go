package graph

import (
	"context"
	"fmt"
	"time"
)

// Selector is the single read layer every engine component goes through.
// It acquires a session per call, stamps the Scope's tenant and validity
// onto each filter, verifies tenant ownership of every returned row, and
// maps store failures into the engine error taxonomy.
//
// Components hold a *Selector, never a Store, so a missing tenant filter
// in one query path cannot leak cross-tenant data.
type Selector struct {
	store Store
}

// NewSelector creates a Selector over the given store.
func NewSelector(store Store) *Selector {
	return &Selector{store: store}
}

// Valid resolves the currently-valid version of each resource for the
// tenant at the given instant. A resource version is included iff
// validFrom <= asOf and (validTo is nil or validTo > asOf).
func (s *Selector) Valid(ctx context.Context, tenantID string, asOf time.Time) ([]Resource, error) {
	return s.Resources(ctx, NewScope(tenantID).At(asOf), ResourceFilter{})
}

// Resource resolves one resource by ID under the scope. It returns
// ErrResourceNotFound when the ID does not exist for the tenant or no
// version is valid at the scope's instant.
func (s *Selector) Resource(ctx context.Context, scope Scope, id string) (Resource, error) {
	rows, err := s.Resources(ctx, scope, ResourceFilter{IDs: []string{id}})
	if err != nil {
		return Resource{}, err
	}
	if len(rows) == 0 {
		return Resource{}, fmt.Errorf("%w: %s", ErrResourceNotFound, id)
	}
	return rows[0], nil
}

// Resources returns the resource versions valid under the scope that also
// match the filter. The filter's TenantID and ValidAt are overwritten by
// the scope.
func (s *Selector) Resources(ctx context.Context, scope Scope, f ResourceFilter) ([]Resource, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	sess, err := s.store.Session(ctx)
	if err != nil {
		return nil, queryFailure("acquire session", err)
	}
	defer sess.Close()

	rows, err := sess.Resources(ctx, scope.resourceFilter(f))
	if err != nil {
		return nil, queryFailure("resources", err)
	}
	if err := scope.verifyResources(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Relationships returns the tenant's relationships matching the filter.
// Both endpoints of every returned edge belong to the scoped tenant.
func (s *Selector) Relationships(ctx context.Context, scope Scope, f RelationshipFilter) ([]Relationship, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	sess, err := s.store.Session(ctx)
	if err != nil {
		return nil, queryFailure("acquire session", err)
	}
	defer sess.Close()

	f.TenantID = scope.TenantID
	rows, err := sess.Relationships(ctx, f)
	if err != nil {
		return nil, queryFailure("relationships", err)
	}
	if err := scope.verifyRelationships(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Violations returns the tenant's violations matching the filter, ordered
// by Timestamp descending.
func (s *Selector) Violations(ctx context.Context, scope Scope, f ViolationFilter) ([]Violation, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	sess, err := s.store.Session(ctx)
	if err != nil {
		return nil, queryFailure("acquire session", err)
	}
	defer sess.Close()

	f.TenantID = scope.TenantID
	rows, err := sess.Violations(ctx, f)
	if err != nil {
		return nil, queryFailure("violations", err)
	}
	if err := scope.verifyViolations(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Policies returns the platform policies matching the filter. Policies
// are global, so no tenant verification applies.
func (s *Selector) Policies(ctx context.Context, f PolicyFilter) ([]Policy, error) {
	sess, err := s.store.Session(ctx)
	if err != nil {
		return nil, queryFailure("acquire session", err)
	}
	defer sess.Close()

	rows, err := sess.Policies(ctx, f)
	if err != nil {
		return nil, queryFailure("policies", err)
	}
	return rows, nil
}

// ComplianceReports returns all compliance reports for the scoped tenant.
func (s *Selector) ComplianceReports(ctx context.Context, scope Scope) ([]ComplianceReport, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	sess, err := s.store.Session(ctx)
	if err != nil {
		return nil, queryFailure("acquire session", err)
	}
	defer sess.Close()

	rows, err := sess.ComplianceReports(ctx, scope.TenantID)
	if err != nil {
		return nil, queryFailure("compliance reports", err)
	}
	if err := scope.verifyReports(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Evaluations returns the tenant's evaluations matching the filter,
// ordered by Timestamp descending.
func (s *Selector) Evaluations(ctx context.Context, scope Scope, f EvaluationFilter) ([]Evaluation, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	sess, err := s.store.Session(ctx)
	if err != nil {
		return nil, queryFailure("acquire session", err)
	}
	defer sess.Close()

	f.TenantID = scope.TenantID
	rows, err := sess.Evaluations(ctx, f)
	if err != nil {
		return nil, queryFailure("evaluations", err)
	}
	if err := scope.verifyEvaluations(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// queryFailure wraps a store error into the transient failure taxonomy,
// preserving the cause for errors.Is/As.
func queryFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrQueryFailure, op, err)
}
