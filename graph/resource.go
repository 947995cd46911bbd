package graph

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Well-known tag keys consulted by the engine.
const (
	// TagInternetExposed marks a resource reachable from the public
	// internet. Its presence (any value) makes the resource an attack path
	// entry point.
	TagInternetExposed = "internet-exposed"

	// TagConfidentiality carries the data confidentiality classification.
	// Values "high" and "critical" make the resource a critical asset.
	TagConfidentiality = "confidentiality"
)

// ResourceTypeInternet is the node type representing the public internet
// boundary. It is always treated as an attack path entry point.
const ResourceTypeInternet = "internet"

// Resource represents one version of a cloud resource in the tenant graph.
//
// Resources are bitemporal: each row carries a validity window
// [ValidFrom, ValidTo). A nil ValidTo means the version is currently
// valid. Multiple historical versions may exist per logical resource id;
// for a given (TenantID, LogicalID) at most one row has a nil ValidTo at
// any instant.
type Resource struct {
	// ID is the unique identifier of this resource version.
	ID string `json:"id"`

	// LogicalID is the stable identifier shared by all versions of the
	// same logical resource. Defaults to ID for the first version.
	LogicalID string `json:"logical_id"`

	// TenantID identifies the tenant that owns the resource.
	TenantID string `json:"tenant_id"`

	// Type is the resource type (e.g., "ec2-instance", "s3-bucket").
	Type string `json:"type"`

	// Cloud is the cloud provider (e.g., "aws", "gcp", "azure").
	Cloud string `json:"cloud,omitempty"`

	// Region is the cloud region the resource lives in.
	Region string `json:"region,omitempty"`

	// Account is the cloud account or subscription identifier.
	Account string `json:"account,omitempty"`

	// State is the provider-reported lifecycle state (e.g., "running").
	State string `json:"state,omitempty"`

	// Tags contains the resource tags as validated key-value pairs.
	Tags map[string]string `json:"tags,omitempty"`

	// Properties contains provider-specific properties. Values are
	// validated at the store boundary, not passed through untouched.
	Properties map[string]any `json:"properties,omitempty"`

	// RiskScore is the scanner-assigned risk probability in [0.0, 1.0].
	// Nil when the resource has not been scored.
	RiskScore *float64 `json:"risk_score,omitempty"`

	// SeverityWeight is the additive weight this resource contributes to
	// attack path risk scores. Nil means the default weight of 1.0.
	// This is a magnitude on the additive path scale, not a probability;
	// see the risk package documentation.
	SeverityWeight *float64 `json:"severity_weight,omitempty"`

	// Owner is the team or person responsible for the resource.
	Owner string `json:"owner,omitempty"`

	// Environment is the deployment environment (e.g., "production").
	Environment string `json:"environment,omitempty"`

	// ValidFrom is the instant this version became valid.
	ValidFrom time.Time `json:"valid_from"`

	// ValidTo is the instant this version stopped being valid.
	// Nil means the version is currently valid.
	ValidTo *time.Time `json:"valid_to,omitempty"`

	// LastScanned is the instant the resource was last scanned.
	LastScanned time.Time `json:"last_scanned,omitempty"`
}

// NewResource creates a new currently-valid Resource version with an
// auto-generated ID, LogicalID equal to the ID, and ValidFrom set to now.
func NewResource(tenantID, resourceType string) *Resource {
	id := uuid.New().String()
	return &Resource{
		ID:        id,
		LogicalID: id,
		TenantID:  tenantID,
		Type:      resourceType,
		Tags:      make(map[string]string),
		ValidFrom: time.Now(),
	}
}

// WithID sets the resource ID (and LogicalID when unset) and returns the
// resource for method chaining.
func (r *Resource) WithID(id string) *Resource {
	if r.LogicalID == r.ID || r.LogicalID == "" {
		r.LogicalID = id
	}
	r.ID = id
	return r
}

// WithTag sets a single tag and returns the resource for method chaining.
func (r *Resource) WithTag(key, value string) *Resource {
	if r.Tags == nil {
		r.Tags = make(map[string]string)
	}
	r.Tags[key] = value
	return r
}

// WithProperty sets a single property and returns the resource for method
// chaining.
func (r *Resource) WithProperty(key string, value any) *Resource {
	if r.Properties == nil {
		r.Properties = make(map[string]any)
	}
	r.Properties[key] = value
	return r
}

// WithRiskScore sets the scanner risk score and returns the resource for
// method chaining.
func (r *Resource) WithRiskScore(score float64) *Resource {
	r.RiskScore = &score
	return r
}

// WithSeverityWeight sets the path severity weight and returns the
// resource for method chaining.
func (r *Resource) WithSeverityWeight(weight float64) *Resource {
	r.SeverityWeight = &weight
	return r
}

// WithValidity sets the validity window and returns the resource for
// method chaining. Pass a zero validTo to leave the version open-ended.
func (r *Resource) WithValidity(validFrom time.Time, validTo time.Time) *Resource {
	r.ValidFrom = validFrom
	if validTo.IsZero() {
		r.ValidTo = nil
	} else {
		r.ValidTo = &validTo
	}
	return r
}

// ValidAt reports whether this version is valid at the given instant:
// ValidFrom <= asOf and (ValidTo is nil or ValidTo > asOf).
func (r *Resource) ValidAt(asOf time.Time) bool {
	if r.ValidFrom.After(asOf) {
		return false
	}
	return r.ValidTo == nil || r.ValidTo.After(asOf)
}

// Expire closes this version's validity window at the given instant.
// Expiring an already-expired version keeps the earlier boundary.
func (r *Resource) Expire(at time.Time) {
	if r.ValidTo != nil && r.ValidTo.Before(at) {
		return
	}
	r.ValidTo = &at
}

// IsEntryPoint reports whether the resource is an attack path entry point:
// either its type is the internet boundary or it carries the
// internet-exposed tag.
func (r *Resource) IsEntryPoint() bool {
	if r.Type == ResourceTypeInternet {
		return true
	}
	_, tagged := r.Tags[TagInternetExposed]
	return tagged
}

// IsCriticalAsset reports whether the resource is a critical asset: its
// confidentiality tag is "high" or "critical".
func (r *Resource) IsCriticalAsset() bool {
	switch r.Tags[TagConfidentiality] {
	case "high", "critical":
		return true
	default:
		return false
	}
}

// Validate checks that the resource has all required fields and that the
// risk score, when present, is within [0.0, 1.0].
func (r *Resource) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("resource ID is required")
	}
	if r.TenantID == "" {
		return fmt.Errorf("tenant ID is required")
	}
	if r.Type == "" {
		return fmt.Errorf("resource type is required")
	}
	if r.ValidFrom.IsZero() {
		return fmt.Errorf("valid_from timestamp is required")
	}
	if r.ValidTo != nil && !r.ValidTo.After(r.ValidFrom) {
		return fmt.Errorf("valid_to must be after valid_from")
	}
	if r.RiskScore != nil && (*r.RiskScore < 0.0 || *r.RiskScore > 1.0) {
		return fmt.Errorf("risk score must be between 0.0 and 1.0, got %f", *r.RiskScore)
	}
	return nil
}
