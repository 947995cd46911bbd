package graph

import (
	"context"
	"errors"
	"testing"
	"time"
)

func mustAddResource(t *testing.T, store *MemoryStore, r *Resource) {
	t.Helper()
	if err := store.AddResource(*r); err != nil {
		t.Fatalf("AddResource failed: %v", err)
	}
}

func TestSelectorValidFiltersByWindow(t *testing.T) {
	store := NewMemoryStore()
	sel := NewSelector(store)

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	past := base.Add(-48 * time.Hour)
	expiredAt := base.Add(-24 * time.Hour)

	current := NewResource("t1", "vm").WithValidity(past, time.Time{})
	expired := NewResource("t1", "vm").WithValidity(past, expiredAt)
	mustAddResource(t, store, current)
	mustAddResource(t, store, expired)

	// A version with validTo in the past is excluded from Valid(now).
	got, err := sel.Valid(context.Background(), "t1", base)
	if err != nil {
		t.Fatalf("Valid failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != current.ID {
		t.Fatalf("Valid(now) returned %d resources, want only the current version", len(got))
	}

	// The same version is included just after its validFrom.
	got, err = sel.Valid(context.Background(), "t1", past.Add(time.Second))
	if err != nil {
		t.Fatalf("Valid failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Valid(validFrom+1s) returned %d resources, want 2", len(got))
	}
}

func TestSelectorTenantIsolation(t *testing.T) {
	store := NewMemoryStore()
	sel := NewSelector(store)

	mustAddResource(t, store, NewResource("t1", "vm"))
	mustAddResource(t, store, NewResource("t2", "vm"))

	got, err := sel.Valid(context.Background(), "t1", time.Now())
	if err != nil {
		t.Fatalf("Valid failed: %v", err)
	}
	for _, r := range got {
		if r.TenantID != "t1" {
			t.Errorf("resource %s leaked from tenant %s", r.ID, r.TenantID)
		}
	}
}

// leakyStore simulates a store-level filter bug by returning rows from a
// different tenant than requested.
type leakyStore struct {
	inner *MemoryStore
}

func (l *leakyStore) Session(ctx context.Context) (Session, error) {
	return &leakySession{store: l.inner}, nil
}

func (l *leakyStore) Close() error { return l.inner.Close() }

type leakySession struct {
	store *MemoryStore
}

func (s *leakySession) Resources(ctx context.Context, f ResourceFilter) ([]Resource, error) {
	inner, err := s.store.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer inner.Close()
	f.TenantID = "other-tenant"
	return inner.Resources(ctx, f)
}

func (s *leakySession) Relationships(ctx context.Context, f RelationshipFilter) ([]Relationship, error) {
	return nil, nil
}

func (s *leakySession) Violations(ctx context.Context, f ViolationFilter) ([]Violation, error) {
	return nil, nil
}

func (s *leakySession) Policies(ctx context.Context, f PolicyFilter) ([]Policy, error) {
	return nil, nil
}

func (s *leakySession) ComplianceReports(ctx context.Context, tenantID string) ([]ComplianceReport, error) {
	return nil, nil
}

func (s *leakySession) Evaluations(ctx context.Context, f EvaluationFilter) ([]Evaluation, error) {
	return nil, nil
}

func (s *leakySession) Close() error { return nil }

func TestSelectorResourceLookup(t *testing.T) {
	store := NewMemoryStore()
	sel := NewSelector(store)

	r := NewResource("t1", "db").WithID("db-1")
	mustAddResource(t, store, r)

	got, err := sel.Resource(context.Background(), NewScope("t1"), "db-1")
	if err != nil {
		t.Fatalf("Resource failed: %v", err)
	}
	if got.ID != "db-1" {
		t.Errorf("Resource returned %q, want db-1", got.ID)
	}

	_, err = sel.Resource(context.Background(), NewScope("t1"), "db-9")
	if !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("unknown ID returned %v, want ErrResourceNotFound", err)
	}

	// A resource outside its validity window does not resolve.
	expired := NewResource("t1", "db").WithID("db-old").
		WithValidity(time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))
	mustAddResource(t, store, expired)
	_, err = sel.Resource(context.Background(), NewScope("t1"), "db-old")
	if !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("expired ID returned %v, want ErrResourceNotFound", err)
	}

	// Another tenant's ID does not resolve either.
	_, err = sel.Resource(context.Background(), NewScope("t2"), "db-1")
	if !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("cross-tenant ID returned %v, want ErrResourceNotFound", err)
	}
}

func TestSelectorDetectsTenantMismatch(t *testing.T) {
	inner := NewMemoryStore()
	mustAddResource(t, inner, NewResource("other-tenant", "vm"))

	sel := NewSelector(&leakyStore{inner: inner})

	_, err := sel.Valid(context.Background(), "t1", time.Now())
	if !errors.Is(err, ErrTenantMismatch) {
		t.Fatalf("Valid on a leaky store returned %v, want ErrTenantMismatch", err)
	}
}

func TestSelectorWrapsStoreFailures(t *testing.T) {
	store := NewMemoryStore()
	store.Close()

	sel := NewSelector(store)
	_, err := sel.Valid(context.Background(), "t1", time.Now())
	if !errors.Is(err, ErrQueryFailure) {
		t.Fatalf("Valid on a closed store returned %v, want ErrQueryFailure", err)
	}
}

func TestSelectorRequiresTenant(t *testing.T) {
	sel := NewSelector(NewMemoryStore())
	if _, err := sel.Valid(context.Background(), "", time.Now()); err == nil {
		t.Error("Valid with empty tenant should fail")
	}
}

func TestMemoryStoreViolationOrderingAndLimit(t *testing.T) {
	store := NewMemoryStore()
	sel := NewSelector(store)

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		v := NewViolation("t1", "p1", "r1", "medium")
		v.Timestamp = base.Add(time.Duration(i) * time.Hour)
		if err := store.AddViolation(*v); err != nil {
			t.Fatalf("AddViolation failed: %v", err)
		}
	}

	got, err := sel.Violations(context.Background(), NewScope("t1"), ViolationFilter{Limit: 3})
	if err != nil {
		t.Fatalf("Violations failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d violations, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.After(got[i-1].Timestamp) {
			t.Error("violations are not ordered by timestamp descending")
		}
	}
	if !got[0].Timestamp.Equal(base.Add(4 * time.Hour)) {
		t.Errorf("first violation timestamp = %v, want the newest", got[0].Timestamp)
	}
}

func TestMemoryStoreSinceFilters(t *testing.T) {
	store := NewMemoryStore()
	sel := NewSelector(store)

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	early := NewViolation("t1", "p1", "r1", "low")
	early.Timestamp = base
	late := NewViolation("t1", "p1", "r1", "low")
	late.Timestamp = base.Add(2 * time.Hour)
	for _, v := range []*Violation{early, late} {
		if err := store.AddViolation(*v); err != nil {
			t.Fatalf("AddViolation failed: %v", err)
		}
	}

	got, err := sel.Violations(context.Background(), NewScope("t1"), ViolationFilter{Since: base.Add(time.Hour)})
	if err != nil {
		t.Fatalf("Violations failed: %v", err)
	}
	if len(got) != 1 || !got[0].Timestamp.Equal(late.Timestamp) {
		t.Fatalf("Since filter returned %d violations, want only the late one", len(got))
	}

	// Since is inclusive.
	got, err = sel.Violations(context.Background(), NewScope("t1"), ViolationFilter{Since: base})
	if err != nil {
		t.Fatalf("Violations failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("inclusive Since returned %d violations, want 2", len(got))
	}
}

func TestMemoryStoreSessionClose(t *testing.T) {
	store := NewMemoryStore()
	sess, err := store.Session(context.Background())
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	_, err = sess.Resources(context.Background(), ResourceFilter{TenantID: "t1"})
	if !errors.Is(err, ErrSessionClosed) {
		t.Errorf("read on closed session returned %v, want ErrSessionClosed", err)
	}
}
