package graph

import "time"

// ComplianceReport represents one compliance assessment for a tenant.
// One or more reports may exist per tenant over time; aggregation averages
// over all reports currently associated with the tenant unless filtered
// by timeframe.
type ComplianceReport struct {
	// TenantID identifies the assessed tenant.
	TenantID string `json:"tenant_id"`

	// OverallScore is the weighted compliance score in [0, 100].
	OverallScore float64 `json:"overall_score"`

	// Status is the report-level compliance status.
	Status string `json:"status,omitempty"`

	// GeneratedAt is the report generation time.
	GeneratedAt time.Time `json:"generated_at"`

	// Frameworks holds the per-framework scores this report covers.
	Frameworks []FrameworkCompliance `json:"frameworks,omitempty"`
}

// FrameworkCompliance is the per-framework score within a compliance
// report.
type FrameworkCompliance struct {
	// Framework is the external standard name (e.g., "SOC2", "PCI-DSS").
	Framework string `json:"framework"`

	// Score is the framework compliance score in [0, 100].
	Score float64 `json:"score"`

	// Status is the framework-level compliance status.
	Status string `json:"status,omitempty"`

	// LastAssessed is when the framework was last assessed.
	LastAssessed time.Time `json:"last_assessed,omitempty"`
}
