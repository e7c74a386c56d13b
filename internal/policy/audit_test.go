package policy

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// setupAuditStore opens an in-memory database and prepares the audit schema.
func setupAuditStore(t *testing.T) *AuditStore {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	// A :memory: database is private to its connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewAuditStore(db)
	if err != nil {
		t.Fatalf("NewAuditStore() error = %v", err)
	}
	return store
}

func TestAuditSaveAndGetDecision(t *testing.T) {
	store := setupAuditStore(t)
	ctx := context.Background()

	decision := &PolicyDecision{
		PolicyPackage: DefaultPolicyPackage,
		Result:        PolicyResultDeny,
		Violations:    []string{"breakdown has 10 subtasks, limit is 8"},
		Warnings:      []string{"total complexity is above 20"},
		Input:         map[string]any{"breakdown": map[string]any{"subtask_count": 10}},
		ItemID:        42,
	}

	if err := store.SaveDecision(ctx, decision); err != nil {
		t.Fatalf("SaveDecision() error = %v", err)
	}
	if decision.DecisionID == "" {
		t.Fatal("SaveDecision() did not assign a decision ID")
	}
	if decision.EvaluatedAt.IsZero() {
		t.Fatal("SaveDecision() did not assign an evaluation time")
	}

	got, err := store.GetDecision(ctx, decision.DecisionID)
	if err != nil {
		t.Fatalf("GetDecision() error = %v", err)
	}

	if got.Result != PolicyResultDeny {
		t.Errorf("Result = %q, want deny", got.Result)
	}
	if got.ItemID != 42 {
		t.Errorf("ItemID = %d, want 42", got.ItemID)
	}
	if len(got.Violations) != 1 || got.Violations[0] != decision.Violations[0] {
		t.Errorf("Violations = %v, want %v", got.Violations, decision.Violations)
	}
	if len(got.Warnings) != 1 {
		t.Errorf("Warnings = %v, want one entry", got.Warnings)
	}
	if got.Input == nil {
		t.Error("Input was not round-tripped")
	}
}

func TestAuditSaveDecisionNil(t *testing.T) {
	store := setupAuditStore(t)
	if err := store.SaveDecision(context.Background(), nil); err == nil {
		t.Error("SaveDecision(nil) = nil error, want error")
	}
}

func TestAuditGetDecisionNotFound(t *testing.T) {
	store := setupAuditStore(t)
	if _, err := store.GetDecision(context.Background(), "no-such-id"); err == nil {
		t.Error("GetDecision() = nil error, want not found")
	}
}

func TestAuditListDecisions(t *testing.T) {
	store := setupAuditStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seed := []*PolicyDecision{
		{Result: PolicyResultAllow, ItemID: 1, EvaluatedAt: base},
		{Result: PolicyResultDeny, ItemID: 1, Violations: []string{"too many subtasks"}, EvaluatedAt: base.Add(time.Hour)},
		{Result: PolicyResultAllow, ItemID: 2, EvaluatedAt: base.Add(2 * time.Hour)},
		{Result: PolicyResultDeny, ItemID: 3, Violations: []string{"protected label"}, EvaluatedAt: base.Add(3 * time.Hour)},
	}
	for _, d := range seed {
		d.PolicyPackage = DefaultPolicyPackage
		if err := store.SaveDecision(ctx, d); err != nil {
			t.Fatalf("SaveDecision() error = %v", err)
		}
	}

	t.Run("all newest first", func(t *testing.T) {
		got, err := store.ListDecisions(ctx, ListDecisionsOptions{})
		if err != nil {
			t.Fatalf("ListDecisions() error = %v", err)
		}
		if len(got) != 4 {
			t.Fatalf("len = %d, want 4", len(got))
		}
		if got[0].ItemID != 3 {
			t.Errorf("first decision ItemID = %d, want 3 (newest)", got[0].ItemID)
		}
	})

	t.Run("filter by item", func(t *testing.T) {
		got, err := store.ListDecisions(ctx, ListDecisionsOptions{ItemID: 1})
		if err != nil {
			t.Fatalf("ListDecisions() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("len = %d, want 2", len(got))
		}
	})

	t.Run("filter by result", func(t *testing.T) {
		got, err := store.ListDecisions(ctx, ListDecisionsOptions{Result: PolicyResultDeny})
		if err != nil {
			t.Fatalf("ListDecisions() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("len = %d, want 2", len(got))
		}
	})

	t.Run("filter by since", func(t *testing.T) {
		got, err := store.ListDecisions(ctx, ListDecisionsOptions{Since: base.Add(90 * time.Minute)})
		if err != nil {
			t.Fatalf("ListDecisions() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("len = %d, want 2", len(got))
		}
	})

	t.Run("limit", func(t *testing.T) {
		got, err := store.ListDecisions(ctx, ListDecisionsOptions{Limit: 1})
		if err != nil {
			t.Fatalf("ListDecisions() error = %v", err)
		}
		if len(got) != 1 {
			t.Errorf("len = %d, want 1", len(got))
		}
	})
}

func TestAuditCountViolations(t *testing.T) {
	store := setupAuditStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, result := range []string{PolicyResultDeny, PolicyResultDeny, PolicyResultAllow} {
		d := &PolicyDecision{
			PolicyPackage: DefaultPolicyPackage,
			Result:        result,
			EvaluatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		if err := store.SaveDecision(ctx, d); err != nil {
			t.Fatalf("SaveDecision() error = %v", err)
		}
	}

	count, err := store.CountViolations(ctx, base)
	if err != nil {
		t.Fatalf("CountViolations() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountViolations() = %d, want 2", count)
	}

	count, err = store.CountViolations(ctx, base.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("CountViolations() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountViolations(since later) = %d, want 1", count)
	}
}

func TestAuditPruneOldDecisions(t *testing.T) {
	store := setupAuditStore(t)
	ctx := context.Background()

	old := &PolicyDecision{
		PolicyPackage: DefaultPolicyPackage,
		Result:        PolicyResultAllow,
		EvaluatedAt:   time.Now().UTC().Add(-48 * time.Hour),
	}
	recent := &PolicyDecision{
		PolicyPackage: DefaultPolicyPackage,
		Result:        PolicyResultAllow,
		EvaluatedAt:   time.Now().UTC(),
	}
	for _, d := range []*PolicyDecision{old, recent} {
		if err := store.SaveDecision(ctx, d); err != nil {
			t.Fatalf("SaveDecision() error = %v", err)
		}
	}

	pruned, err := store.PruneOldDecisions(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneOldDecisions() error = %v", err)
	}
	if pruned != 1 {
		t.Errorf("PruneOldDecisions() = %d, want 1", pruned)
	}

	remaining, err := store.ListDecisions(ctx, ListDecisionsOptions{})
	if err != nil {
		t.Fatalf("ListDecisions() error = %v", err)
	}
	if len(remaining) != 1 || remaining[0].DecisionID != recent.DecisionID {
		t.Errorf("remaining = %d decisions, want only the recent one", len(remaining))
	}
}
