package risk

import "fmt"

// Severity represents a severity classification used across the posture
// engine for violations, resource risk levels, and attack path risk levels.
type Severity string

const (
	// SeverityCritical indicates an issue requiring immediate attention.
	// Examples: publicly exposed credentials, an unauthenticated path to a
	// confidential data store
	SeverityCritical Severity = "critical"

	// SeverityHigh indicates a high-impact issue.
	// Examples: privilege escalation opportunities, overly permissive roles
	SeverityHigh Severity = "high"

	// SeverityMedium indicates a moderate issue.
	// Examples: missing encryption at rest, weak network segmentation
	SeverityMedium Severity = "medium"

	// SeverityLow indicates a minor issue.
	// Examples: missing tags, non-critical logging gaps
	SeverityLow Severity = "low"

	// SeverityInfo indicates an informational finding without direct impact.
	SeverityInfo Severity = "info"

	// SeverityMinimal is the lowest resource risk level. It is produced only
	// by ClassifyResourceRisk; violations never carry it.
	SeverityMinimal Severity = "minimal"
)

// severityWeights maps violation severity levels to numeric weights for
// risk calculation. Higher weights indicate more severe violations.
var severityWeights = map[Severity]float64{
	SeverityCritical: 10.0,
	SeverityHigh:     7.5,
	SeverityMedium:   5.0,
	SeverityLow:      2.5,
	SeverityInfo:     1.0,
}

// IsValid returns true if the severity is a valid violation severity.
// SeverityMinimal is a resource risk level, not a violation severity.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	default:
		return false
	}
}

// Weight returns the numeric weight associated with the severity level.
// Returns 0.0 for invalid severity levels.
func (s Severity) Weight() float64 {
	if weight, ok := severityWeights[s]; ok {
		return weight
	}
	return 0.0
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a string into a Severity value.
// Returns an error if the string is not a valid violation severity.
func ParseSeverity(s string) (Severity, error) {
	severity := Severity(s)
	if !severity.IsValid() {
		return "", fmt.Errorf("invalid severity: %s", s)
	}
	return severity, nil
}

// CompareSeverity compares two severity levels by weight.
// Returns:
//   - negative if s1 < s2
//   - zero if s1 == s2
//   - positive if s1 > s2
func CompareSeverity(s1, s2 Severity) int {
	w1 := s1.Weight()
	w2 := s2.Weight()
	if w1 < w2 {
		return -1
	}
	if w1 > w2 {
		return 1
	}
	return 0
}

// AllSeverities returns all valid violation severity levels in order from
// critical to info.
func AllSeverities() []Severity {
	return []Severity{
		SeverityCritical,
		SeverityHigh,
		SeverityMedium,
		SeverityLow,
		SeverityInfo,
	}
}
