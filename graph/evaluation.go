package graph

import (
	"fmt"
	"time"
)

// EvaluationStatus represents the state of a policy evaluation run.
type EvaluationStatus string

const (
	// EvaluationPending indicates the run is queued but not started.
	EvaluationPending EvaluationStatus = "pending"

	// EvaluationRunning indicates the run is in progress.
	EvaluationRunning EvaluationStatus = "running"

	// EvaluationCompleted indicates the run finished. Completed
	// evaluations are immutable.
	EvaluationCompleted EvaluationStatus = "completed"

	// EvaluationFailed indicates the run aborted with an error.
	EvaluationFailed EvaluationStatus = "failed"
)

// IsValid returns true if the status is a valid evaluation status.
func (s EvaluationStatus) IsValid() bool {
	switch s {
	case EvaluationPending, EvaluationRunning, EvaluationCompleted, EvaluationFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s EvaluationStatus) String() string {
	return string(s)
}

// Evaluation represents one CI/CD or runtime policy run.
type Evaluation struct {
	// ID is the unique identifier of the evaluation.
	ID string `json:"id"`

	// TenantID identifies the tenant the evaluation ran for.
	TenantID string `json:"tenant_id"`

	// Type is the evaluation type (e.g., "ci", "runtime", "scheduled").
	Type string `json:"type,omitempty"`

	// Status is the current run state.
	Status EvaluationStatus `json:"status"`

	// Result is the run outcome (e.g., "pass", "fail").
	Result string `json:"result,omitempty"`

	// Score is the evaluation score.
	Score float64 `json:"score"`

	// Timestamp is when the evaluation was triggered.
	Timestamp time.Time `json:"timestamp"`

	// CompletedAt is when the evaluation finished. Nil while pending or
	// running.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Duration is how long the run took.
	Duration time.Duration `json:"duration,omitempty"`

	// TriggeredBy identifies what started the run (user, pipeline, timer).
	TriggeredBy string `json:"triggered_by,omitempty"`
}

// Complete marks the evaluation as completed at the given instant and
// records the result. Completed evaluations are immutable; completing one
// twice is an error.
func (e *Evaluation) Complete(at time.Time, result string, score float64) error {
	if e.Status == EvaluationCompleted {
		return fmt.Errorf("evaluation %s is already completed", e.ID)
	}
	e.Status = EvaluationCompleted
	e.Result = result
	e.Score = score
	e.CompletedAt = &at
	e.Duration = at.Sub(e.Timestamp)
	return nil
}

// Validate checks that the evaluation has all required fields.
func (e *Evaluation) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("evaluation ID is required")
	}
	if e.TenantID == "" {
		return fmt.Errorf("tenant ID is required")
	}
	if !e.Status.IsValid() {
		return fmt.Errorf("invalid evaluation status: %s", e.Status)
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	if e.Status == EvaluationCompleted && e.CompletedAt == nil {
		return fmt.Errorf("completed evaluation must have completed_at set")
	}
	return nil
}
