package graph

import (
	"fmt"
	"time"
)

// Scope pins a query to exactly one tenant at one instant. All engine
// reads carry a Scope so that tenant filtering and temporal validity are
// applied uniformly rather than repeated ad hoc in every query.
type Scope struct {
	// TenantID is the tenant every read is restricted to.
	TenantID string

	// AsOf is the instant temporal validity is evaluated at.
	AsOf time.Time
}

// NewScope creates a Scope for the tenant at the current instant.
func NewScope(tenantID string) Scope {
	return Scope{TenantID: tenantID, AsOf: time.Now()}
}

// At returns a copy of the scope pinned to the given instant.
func (s Scope) At(asOf time.Time) Scope {
	s.AsOf = asOf
	return s
}

// Validate checks that the scope names a tenant.
func (s Scope) Validate() error {
	if s.TenantID == "" {
		return fmt.Errorf("scope tenant ID is required")
	}
	return nil
}

// resourceFilter stamps the scope's tenant and validity instant onto a
// resource filter.
func (s Scope) resourceFilter(f ResourceFilter) ResourceFilter {
	f.TenantID = s.TenantID
	asOf := s.AsOf
	f.ValidAt = &asOf
	return f
}

// verifyResources checks that every returned row belongs to the scoped
// tenant. A mismatch indicates a store-level isolation bug and aborts the
// query with ErrTenantMismatch.
func (s Scope) verifyResources(rows []Resource) error {
	for i := range rows {
		if rows[i].TenantID != s.TenantID {
			return fmt.Errorf("%w: resource %s belongs to tenant %s, requested %s",
				ErrTenantMismatch, rows[i].ID, rows[i].TenantID, s.TenantID)
		}
	}
	return nil
}

func (s Scope) verifyRelationships(rows []Relationship) error {
	for i := range rows {
		if rows[i].TenantID != s.TenantID {
			return fmt.Errorf("%w: relationship %s belongs to tenant %s, requested %s",
				ErrTenantMismatch, rows[i].ID, rows[i].TenantID, s.TenantID)
		}
	}
	return nil
}

func (s Scope) verifyViolations(rows []Violation) error {
	for i := range rows {
		if rows[i].TenantID != s.TenantID {
			return fmt.Errorf("%w: violation %s belongs to tenant %s, requested %s",
				ErrTenantMismatch, rows[i].ID, rows[i].TenantID, s.TenantID)
		}
	}
	return nil
}

func (s Scope) verifyReports(rows []ComplianceReport) error {
	for i := range rows {
		if rows[i].TenantID != s.TenantID {
			return fmt.Errorf("%w: compliance report belongs to tenant %s, requested %s",
				ErrTenantMismatch, rows[i].TenantID, s.TenantID)
		}
	}
	return nil
}

func (s Scope) verifyEvaluations(rows []Evaluation) error {
	for i := range rows {
		if rows[i].TenantID != s.TenantID {
			return fmt.Errorf("%w: evaluation %s belongs to tenant %s, requested %s",
				ErrTenantMismatch, rows[i].ID, rows[i].TenantID, s.TenantID)
		}
	}
	return nil
}
