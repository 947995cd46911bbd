package graph

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store implementation used by tests and
// local development. It applies the same filter semantics a production
// graph store is expected to provide, including Timestamp-descending
// ordering for violations and evaluations.
//
// Thread-safety: all methods are safe for concurrent use.
type MemoryStore struct {
	mu            sync.RWMutex
	resources     []Resource
	relationships []Relationship
	violations    []Violation
	policies      []Policy
	reports       []ComplianceReport
	evaluations   []Evaluation
	closed        bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AddResource stores a resource version. The resource is validated first.
func (m *MemoryStore) AddResource(r Resource) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid resource: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources = append(m.resources, r)
	return nil
}

// AddRelationship stores a relationship.
func (m *MemoryStore) AddRelationship(r Relationship) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid relationship: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.relationships = append(m.relationships, r)
	return nil
}

// AddViolation stores a violation.
func (m *MemoryStore) AddViolation(v Violation) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("invalid violation: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.violations = append(m.violations, v)
	return nil
}

// AddPolicy stores a policy.
func (m *MemoryStore) AddPolicy(p Policy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies = append(m.policies, p)
}

// AddComplianceReport stores a compliance report.
func (m *MemoryStore) AddComplianceReport(r ComplianceReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
}

// AddEvaluation stores an evaluation.
func (m *MemoryStore) AddEvaluation(e Evaluation) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid evaluation: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluations = append(m.evaluations, e)
	return nil
}

// Session acquires a read session. MemoryStore sessions are lightweight
// views over the shared state.
func (m *MemoryStore) Session(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return nil, ErrSessionClosed
	}
	return &memorySession{store: m}, nil
}

// Close marks the store closed. Subsequent session acquisition fails.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type memorySession struct {
	store  *MemoryStore
	mu     sync.Mutex
	closed bool
}

func (s *memorySession) checkOpen(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

func (s *memorySession) Resources(ctx context.Context, f ResourceFilter) ([]Resource, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	if f.TenantID == "" {
		return nil, fmt.Errorf("resource filter requires a tenant ID")
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var out []Resource
	for _, r := range s.store.resources {
		if r.TenantID != f.TenantID {
			continue
		}
		if f.ValidAt != nil && !r.ValidAt(*f.ValidAt) {
			continue
		}
		if len(f.IDs) > 0 && !slices.Contains(f.IDs, r.ID) {
			continue
		}
		if len(f.Types) > 0 && !slices.Contains(f.Types, r.Type) {
			continue
		}
		if f.Cloud != "" && r.Cloud != f.Cloud {
			continue
		}
		if f.Environment != "" && r.Environment != f.Environment {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *memorySession) Relationships(ctx context.Context, f RelationshipFilter) ([]Relationship, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	if f.TenantID == "" {
		return nil, fmt.Errorf("relationship filter requires a tenant ID")
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var out []Relationship
	for _, r := range s.store.relationships {
		if r.TenantID != f.TenantID {
			continue
		}
		if len(f.Types) > 0 && !slices.Contains(f.Types, r.Type) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *memorySession) Violations(ctx context.Context, f ViolationFilter) ([]Violation, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	if f.TenantID == "" {
		return nil, fmt.Errorf("violation filter requires a tenant ID")
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var out []Violation
	for _, v := range s.store.violations {
		if v.TenantID != f.TenantID {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, v.Status) {
			continue
		}
		if len(f.Severities) > 0 && !slices.Contains(f.Severities, v.Severity) {
			continue
		}
		if !f.Since.IsZero() && v.Timestamp.Before(f.Since) {
			continue
		}
		if !f.ResolvedSince.IsZero() {
			if v.ResolvedAt == nil || v.ResolvedAt.Before(f.ResolvedSince) {
				continue
			}
		}
		out = append(out, v)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *memorySession) Policies(ctx context.Context, f PolicyFilter) ([]Policy, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var out []Policy
	for _, p := range s.store.policies {
		if f.Enabled != nil && p.Enabled != *f.Enabled {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *memorySession) ComplianceReports(ctx context.Context, tenantID string) ([]ComplianceReport, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	if tenantID == "" {
		return nil, fmt.Errorf("compliance report lookup requires a tenant ID")
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var out []ComplianceReport
	for _, r := range s.store.reports {
		if r.TenantID == tenantID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memorySession) Evaluations(ctx context.Context, f EvaluationFilter) ([]Evaluation, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	if f.TenantID == "" {
		return nil, fmt.Errorf("evaluation filter requires a tenant ID")
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var out []Evaluation
	for _, e := range s.store.evaluations {
		if e.TenantID != f.TenantID {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, e.Status) {
			continue
		}
		if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
			continue
		}
		if !f.CompletedSince.IsZero() {
			if e.CompletedAt == nil || e.CompletedAt.Before(f.CompletedSince) {
				continue
			}
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *memorySession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
