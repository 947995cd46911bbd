package graph

import (
	"testing"
	"time"
)

func TestNewResource(t *testing.T) {
	r := NewResource("t1", "s3-bucket")

	if r.ID == "" {
		t.Error("NewResource() ID is empty, want auto-generated UUID")
	}
	if r.LogicalID != r.ID {
		t.Errorf("NewResource() LogicalID = %v, want %v", r.LogicalID, r.ID)
	}
	if r.TenantID != "t1" {
		t.Errorf("NewResource() TenantID = %v, want t1", r.TenantID)
	}
	if r.Type != "s3-bucket" {
		t.Errorf("NewResource() Type = %v, want s3-bucket", r.Type)
	}
	if r.ValidFrom.IsZero() {
		t.Error("NewResource() ValidFrom is zero, want now")
	}
	if r.ValidTo != nil {
		t.Error("NewResource() ValidTo should be nil for a current version")
	}
}

func TestResourceValidAt(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := base.Add(24 * time.Hour)

	tests := []struct {
		name    string
		validTo *time.Time
		asOf    time.Time
		want    bool
	}{
		{"before validFrom", nil, base.Add(-time.Second), false},
		{"at validFrom", nil, base, true},
		{"open ended far future", nil, base.Add(1000 * time.Hour), true},
		{"inside closed window", &end, base.Add(time.Hour), true},
		{"at validTo boundary", &end, end, false},
		{"after validTo", &end, end.Add(time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResource("t1", "vm").WithValidity(base, time.Time{})
			r.ValidTo = tt.validTo
			if got := r.ValidAt(tt.asOf); got != tt.want {
				t.Errorf("ValidAt(%v) = %v, want %v", tt.asOf, got, tt.want)
			}
		})
	}
}

func TestResourceExpire(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	r := NewResource("t1", "vm").WithValidity(base, time.Time{})

	cut := base.Add(time.Hour)
	r.Expire(cut)
	if r.ValidTo == nil || !r.ValidTo.Equal(cut) {
		t.Fatalf("Expire() ValidTo = %v, want %v", r.ValidTo, cut)
	}

	// The earlier boundary wins.
	r.Expire(cut.Add(time.Hour))
	if !r.ValidTo.Equal(cut) {
		t.Errorf("second Expire() moved ValidTo to %v, want %v", r.ValidTo, cut)
	}
}

func TestResourceEntryPointAndCriticalAsset(t *testing.T) {
	internet := NewResource("t1", ResourceTypeInternet)
	if !internet.IsEntryPoint() {
		t.Error("internet boundary node should be an entry point")
	}

	exposed := NewResource("t1", "load-balancer").WithTag(TagInternetExposed, "true")
	if !exposed.IsEntryPoint() {
		t.Error("internet-exposed resource should be an entry point")
	}

	internal := NewResource("t1", "vm")
	if internal.IsEntryPoint() {
		t.Error("untagged internal resource should not be an entry point")
	}

	for _, value := range []string{"high", "critical"} {
		r := NewResource("t1", "db").WithTag(TagConfidentiality, value)
		if !r.IsCriticalAsset() {
			t.Errorf("confidentiality=%q should make a critical asset", value)
		}
	}

	low := NewResource("t1", "db").WithTag(TagConfidentiality, "low")
	if low.IsCriticalAsset() {
		t.Error("confidentiality=low should not make a critical asset")
	}
}

func TestResourceValidate(t *testing.T) {
	r := NewResource("t1", "vm")
	if err := r.Validate(); err != nil {
		t.Errorf("valid resource failed validation: %v", err)
	}

	bad := NewResource("", "vm")
	if err := bad.Validate(); err == nil {
		t.Error("resource without tenant should fail validation")
	}

	outOfRange := NewResource("t1", "vm").WithRiskScore(1.5)
	if err := outOfRange.Validate(); err == nil {
		t.Error("risk score above 1.0 should fail validation")
	}
}

func TestViolationLifecycle(t *testing.T) {
	v := NewViolation("t1", "p1", "r1", "high")

	if v.Status != StatusOpen {
		t.Fatalf("new violation status = %v, want open", v.Status)
	}

	now := time.Now()
	if err := v.SetStatus(StatusInProgress, now); err != nil {
		t.Fatalf("open -> in_progress failed: %v", err)
	}

	if err := v.Resolve(now); err != nil {
		t.Fatalf("in_progress -> resolved failed: %v", err)
	}
	if v.ResolvedAt == nil || !v.ResolvedAt.Equal(now) {
		t.Errorf("ResolvedAt = %v, want %v", v.ResolvedAt, now)
	}

	// Resolved is terminal.
	if err := v.SetStatus(StatusOpen, now); err == nil {
		t.Error("resolved -> open should be rejected")
	}
}

func TestViolationResolvedAtSetOnce(t *testing.T) {
	v := NewViolation("t1", "p1", "r1", "critical")
	first := time.Now()
	if err := v.Resolve(first); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if err := v.Resolve(first.Add(time.Hour)); err == nil {
		t.Error("resolving twice should be rejected")
	}
	if !v.ResolvedAt.Equal(first) {
		t.Errorf("ResolvedAt = %v, want the first resolution time %v", v.ResolvedAt, first)
	}
}

func TestEvaluationComplete(t *testing.T) {
	e := Evaluation{
		ID:        "e1",
		TenantID:  "t1",
		Status:    EvaluationRunning,
		Timestamp: time.Now().Add(-time.Minute),
	}

	done := time.Now()
	if err := e.Complete(done, "pass", 92.5); err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}
	if e.Status != EvaluationCompleted {
		t.Errorf("Status = %v, want completed", e.Status)
	}
	if e.CompletedAt == nil || !e.CompletedAt.Equal(done) {
		t.Errorf("CompletedAt = %v, want %v", e.CompletedAt, done)
	}
	if e.Duration <= 0 {
		t.Errorf("Duration = %v, want positive", e.Duration)
	}

	if err := e.Complete(done, "pass", 92.5); err == nil {
		t.Error("completing a completed evaluation should be rejected")
	}
}
