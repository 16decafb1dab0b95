package fraud

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func storedResult(id, accountID string, decision Decision, at time.Time) *AnalysisResult {
	return &AnalysisResult{
		ID:            id,
		TransactionID: "txn-" + id,
		AccountID:     accountID,
		Score:         0.5,
		Level:         LevelMedium,
		Decision:      decision,
		Factors:       []string{"High transaction amount"},
		AnalyzedAt:    at,
		ModelVersion:  ModelVersion,
	}
}

func TestMemoryStoreRecordAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	want := storedResult("asmt_1", "acct-ms", DecisionReview, time.Now())
	if err := store.Record(ctx, want); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.Get(ctx, "asmt_1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.ID != "asmt_1" || got.AccountID != "acct-ms" {
		t.Fatalf("Get returned %+v", got)
	}

	// Stored copy is isolated from caller mutations.
	want.Factors[0] = "tampered"
	got, _ = store.Get(ctx, "asmt_1")
	if got.Factors[0] != "High transaction amount" {
		t.Error("store should hold a deep copy of the result")
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()

	got, err := store.Get(context.Background(), "asmt_nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("missing id should return nil, got %+v", got)
	}
}

func TestMemoryStoreListByAccount(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		r := storedResult(fmt.Sprintf("asmt_%d", i), "acct-list", DecisionApprove, base.Add(time.Duration(i)*time.Second))
		if err := store.Record(ctx, r); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	store.Record(ctx, storedResult("asmt_other", "acct-other", DecisionApprove, base))

	got, err := store.ListByAccount(ctx, "acct-list", 3)
	if err != nil {
		t.Fatalf("ListByAccount: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want limit 3", len(got))
	}
	if got[0].ID != "asmt_4" {
		t.Errorf("first entry = %s, want most recent asmt_4", got[0].ID)
	}

	empty, err := store.ListByAccount(ctx, "acct-none", 10)
	if err != nil {
		t.Fatalf("ListByAccount: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("unknown account should list nothing, got %d", len(empty))
	}
}

func TestMemoryStoreCountByDecision(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	store.Record(ctx, storedResult("asmt_a", "acct-c", DecisionApprove, now))
	store.Record(ctx, storedResult("asmt_b", "acct-c", DecisionApprove, now))
	store.Record(ctx, storedResult("asmt_c", "acct-c", DecisionDecline, now))

	counts, err := store.CountByDecision(ctx)
	if err != nil {
		t.Fatalf("CountByDecision: %v", err)
	}
	if counts[DecisionApprove] != 2 {
		t.Errorf("APPROVE count = %d, want 2", counts[DecisionApprove])
	}
	if counts[DecisionDecline] != 1 {
		t.Errorf("DECLINE count = %d, want 1", counts[DecisionDecline])
	}
	if counts[DecisionReview] != 0 {
		t.Errorf("REVIEW count = %d, want 0", counts[DecisionReview])
	}
}
