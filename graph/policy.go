package graph

import "github.com/skysentinel/engine/risk"

// Policy represents a policy definition. Policies are read-only from the
// engine's perspective; the platform's policy service owns their
// lifecycle.
type Policy struct {
	// ID is the unique identifier of the policy.
	ID string `json:"id"`

	// Name is the human-readable policy name.
	Name string `json:"name"`

	// Severity is the severity assigned to violations of this policy.
	Severity risk.Severity `json:"severity"`

	// Category groups related policies (e.g., "encryption", "iam").
	Category string `json:"category,omitempty"`

	// Enabled indicates whether the policy is actively evaluated.
	Enabled bool `json:"enabled"`

	// CloudProvider restricts the policy to one cloud, empty for all.
	CloudProvider string `json:"cloud_provider,omitempty"`

	// ResourceType restricts the policy to one resource type, empty for
	// all.
	ResourceType string `json:"resource_type,omitempty"`
}
