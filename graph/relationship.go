package graph

import (
	"fmt"

	"github.com/google/uuid"
)

// Relationship represents a directed, typed edge between two resources of
// the same tenant (e.g., "CAN_ACCESS", "ASSUMES_ROLE", "ROUTES_TO").
type Relationship struct {
	// ID is the unique identifier of the relationship.
	ID string `json:"id"`

	// TenantID identifies the tenant both endpoints belong to.
	// Cross-tenant edges are never stored.
	TenantID string `json:"tenant_id"`

	// FromID is the source resource ID.
	FromID string `json:"from_id"`

	// ToID is the target resource ID.
	ToID string `json:"to_id"`

	// Type is the relationship type.
	Type string `json:"type"`

	// Properties contains relationship properties (e.g., port, protocol,
	// trust boundary markers) consumed by step risk strategies.
	Properties map[string]any `json:"properties,omitempty"`
}

// NewRelationship creates a new Relationship with an auto-generated ID.
func NewRelationship(tenantID, fromID, toID, relType string) *Relationship {
	return &Relationship{
		ID:       uuid.New().String(),
		TenantID: tenantID,
		FromID:   fromID,
		ToID:     toID,
		Type:     relType,
	}
}

// WithProperty sets a single property and returns the relationship for
// method chaining.
func (r *Relationship) WithProperty(key string, value any) *Relationship {
	if r.Properties == nil {
		r.Properties = make(map[string]any)
	}
	r.Properties[key] = value
	return r
}

// Validate checks that the relationship has all required fields.
func (r *Relationship) Validate() error {
	if r.TenantID == "" {
		return fmt.Errorf("tenant ID is required")
	}
	if r.FromID == "" {
		return fmt.Errorf("from resource ID is required")
	}
	if r.ToID == "" {
		return fmt.Errorf("to resource ID is required")
	}
	if r.Type == "" {
		return fmt.Errorf("relationship type is required")
	}
	return nil
}
