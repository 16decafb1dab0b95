//go:build integration

package fraud

import (
	"context"
	"testing"
	"time"

	"github.com/megabank/fraudguard/internal/testutil"
)

func setupTestDB(t *testing.T) (*PostgresStore, func()) {
	t.Helper()

	db, cleanup := testutil.PGTest(t)
	store := NewPostgresStore(db)

	if err := store.Migrate(context.Background()); err != nil {
		cleanup()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, cleanup
}

func pgResult(id, accountID string, decision Decision, at time.Time) *AnalysisResult {
	level := LevelLow
	score := 0.1
	switch decision {
	case DecisionReview:
		level, score = LevelMedium, 0.4
	case DecisionDecline:
		level, score = LevelHigh, 0.85
	}
	return &AnalysisResult{
		ID:              id,
		TransactionID:   "txn-" + id,
		AccountID:       accountID,
		Score:           score,
		Level:           level,
		Decision:        decision,
		Factors:         []string{"High transaction amount"},
		Recommendations: []string{"Manual review required"},
		AnalyzedAt:      at.UTC().Truncate(time.Microsecond),
		ModelVersion:    ModelVersion,
	}
}

func TestPostgresStore_RecordAndGet(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	want := pgResult("asmt_pg001", "acct-pg", DecisionReview, time.Now())

	if err := store.Record(ctx, want); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	got, err := store.Get(ctx, "asmt_pg001")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for recorded assessment")
	}
	if got.AccountID != want.AccountID {
		t.Errorf("AccountID: got %s, want %s", got.AccountID, want.AccountID)
	}
	if got.Score != want.Score {
		t.Errorf("Score: got %f, want %f", got.Score, want.Score)
	}
	if got.Level != LevelMedium {
		t.Errorf("Level: got %s, want MEDIUM", got.Level)
	}
	if got.Decision != DecisionReview {
		t.Errorf("Decision: got %s, want REVIEW", got.Decision)
	}
	if len(got.Factors) != 1 || got.Factors[0] != "High transaction amount" {
		t.Errorf("Factors: got %v", got.Factors)
	}
	if got.ModelVersion != ModelVersion {
		t.Errorf("ModelVersion: got %s, want %s", got.ModelVersion, ModelVersion)
	}
}

func TestPostgresStore_GetMissing(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	got, err := store.Get(context.Background(), "asmt_nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing id, got %+v", got)
	}
}

func TestPostgresStore_ListByAccount(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i, id := range []string{"asmt_pgl1", "asmt_pgl2", "asmt_pgl3"} {
		r := pgResult(id, "acct-pg-list", DecisionApprove, base.Add(time.Duration(i)*time.Minute))
		if err := store.Record(ctx, r); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	if err := store.Record(ctx, pgResult("asmt_pgother", "acct-pg-other", DecisionApprove, base)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	got, err := store.ListByAccount(ctx, "acct-pg-list", 2)
	if err != nil {
		t.Fatalf("ListByAccount failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(got))
	}
	if got[0].ID != "asmt_pgl3" {
		t.Errorf("Expected most recent first, got %s", got[0].ID)
	}
}

func TestPostgresStore_CountByDecision(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	records := []*AnalysisResult{
		pgResult("asmt_pgc1", "acct-pg-c", DecisionApprove, now),
		pgResult("asmt_pgc2", "acct-pg-c", DecisionApprove, now),
		pgResult("asmt_pgc3", "acct-pg-c", DecisionDecline, now),
	}
	for _, r := range records {
		if err := store.Record(ctx, r); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	counts, err := store.CountByDecision(ctx)
	if err != nil {
		t.Fatalf("CountByDecision failed: %v", err)
	}
	if counts[DecisionApprove] != 2 {
		t.Errorf("APPROVE: got %d, want 2", counts[DecisionApprove])
	}
	if counts[DecisionDecline] != 1 {
		t.Errorf("DECLINE: got %d, want 1", counts[DecisionDecline])
	}
}

func TestPostgresStore_ScoreBoundsEnforced(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	bad := pgResult("asmt_pgbad", "acct-pg-bad", DecisionDecline, time.Now())
	bad.Score = 1.5

	if err := store.Record(context.Background(), bad); err == nil {
		t.Error("Expected check constraint violation for score > 1")
	}
}
