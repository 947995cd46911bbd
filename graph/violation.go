package graph

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skysentinel/engine/risk"
)

// ViolationStatus represents the lifecycle state of a policy violation.
type ViolationStatus string

const (
	// StatusOpen is the initial state of a violation on detection.
	StatusOpen ViolationStatus = "open"

	// StatusInProgress indicates remediation work has started.
	StatusInProgress ViolationStatus = "in_progress"

	// StatusResolved indicates the violation has been fixed.
	// ResolvedAt is set exactly once on transition into this state.
	StatusResolved ViolationStatus = "resolved"

	// StatusIgnored indicates the violation was reviewed and dismissed.
	StatusIgnored ViolationStatus = "ignored"
)

// IsValid returns true if the status is a valid violation status.
func (s ViolationStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusIgnored:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s ViolationStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether a lifecycle transition from s to next is
// allowed. Open violations may move to any other state; in-progress
// violations may be resolved or ignored; resolved and ignored are
// terminal.
func (s ViolationStatus) CanTransitionTo(next ViolationStatus) bool {
	switch s {
	case StatusOpen:
		return next == StatusInProgress || next == StatusResolved || next == StatusIgnored
	case StatusInProgress:
		return next == StatusResolved || next == StatusIgnored
	default:
		return false
	}
}

// AllViolationStatuses returns all valid violation statuses.
func AllViolationStatuses() []ViolationStatus {
	return []ViolationStatus{StatusOpen, StatusInProgress, StatusResolved, StatusIgnored}
}

// Violation represents a detected policy violation on a resource.
type Violation struct {
	// ID is the unique identifier of the violation.
	ID string `json:"id"`

	// TenantID identifies the tenant the violation belongs to.
	TenantID string `json:"tenant_id"`

	// PolicyID references the violated policy.
	PolicyID string `json:"policy_id"`

	// ResourceID references the offending resource version.
	ResourceID string `json:"resource_id"`

	// Severity is the violation severity.
	Severity risk.Severity `json:"severity"`

	// Status is the current lifecycle state.
	Status ViolationStatus `json:"status"`

	// Timestamp is the detection time.
	Timestamp time.Time `json:"timestamp"`

	// ResolvedAt is set exactly once when the violation transitions into
	// the resolved state. Nil while unresolved.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	// Confidence is the detection confidence in [0.0, 1.0].
	Confidence float64 `json:"confidence"`

	// FalsePositive marks the violation as a confirmed false positive.
	FalsePositive bool `json:"false_positive"`

	// MLPrediction is the optional model-predicted violation likelihood.
	MLPrediction *float64 `json:"ml_prediction,omitempty"`
}

// NewViolation creates a new open Violation with an auto-generated ID,
// full confidence, and the detection timestamp set to now.
func NewViolation(tenantID, policyID, resourceID string, severity risk.Severity) *Violation {
	return &Violation{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		PolicyID:   policyID,
		ResourceID: resourceID,
		Severity:   severity,
		Status:     StatusOpen,
		Timestamp:  time.Now(),
		Confidence: 1.0,
	}
}

// SetStatus transitions the violation to the given status, enforcing the
// lifecycle rules. Transitioning into StatusResolved sets ResolvedAt
// exactly once.
func (v *Violation) SetStatus(status ViolationStatus, at time.Time) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid violation status: %s", status)
	}
	if !v.Status.CanTransitionTo(status) {
		return fmt.Errorf("invalid violation transition: %s -> %s", v.Status, status)
	}
	v.Status = status
	if status == StatusResolved && v.ResolvedAt == nil {
		v.ResolvedAt = &at
	}
	return nil
}

// Resolve transitions the violation into the resolved state at the given
// instant.
func (v *Violation) Resolve(at time.Time) error {
	return v.SetStatus(StatusResolved, at)
}

// Validate checks that the violation has all required fields and valid
// values.
func (v *Violation) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("violation ID is required")
	}
	if v.TenantID == "" {
		return fmt.Errorf("tenant ID is required")
	}
	if v.PolicyID == "" {
		return fmt.Errorf("policy ID is required")
	}
	if v.ResourceID == "" {
		return fmt.Errorf("resource ID is required")
	}
	if !v.Severity.IsValid() {
		return fmt.Errorf("invalid severity: %s", v.Severity)
	}
	if !v.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", v.Status)
	}
	if v.Confidence < 0.0 || v.Confidence > 1.0 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0, got %f", v.Confidence)
	}
	if v.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	if v.Status == StatusResolved && v.ResolvedAt == nil {
		return fmt.Errorf("resolved violation must have resolved_at set")
	}
	return nil
}
