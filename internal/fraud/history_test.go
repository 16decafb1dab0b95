package fraud

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestHistoryAppendAndCopy(t *testing.T) {
	store := NewHistoryStore()

	tx := testTx("acct-h1", 100)
	store.Append(tx)

	got := store.History("acct-h1")
	if len(got) != 1 {
		t.Fatalf("history length = %d, want 1", len(got))
	}

	// Returned slice is a copy; mutating it must not touch the store.
	got[0].AccountID = "tampered"
	if again := store.History("acct-h1"); again[0].AccountID != "acct-h1" {
		t.Error("History should return a copy, not the backing slice")
	}
}

func TestHistoryUnknownAccount(t *testing.T) {
	store := NewHistoryStore()

	if got := store.History("nobody"); len(got) != 0 {
		t.Errorf("unknown account history = %v, want empty", got)
	}
	if got := store.Len("nobody"); got != 0 {
		t.Errorf("unknown account length = %d, want 0", got)
	}
}

func TestRecentWithinBoundary(t *testing.T) {
	store := NewHistoryStore()
	ref := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	inside := testTx("acct-win", 100)
	inside.TransactionID = "txn-inside"
	inside.Timestamp = ref.Add(-4 * time.Minute)

	exact := testTx("acct-win", 100)
	exact.TransactionID = "txn-exact"
	exact.Timestamp = ref.Add(-5 * time.Minute)

	outside := testTx("acct-win", 100)
	outside.TransactionID = "txn-outside"
	outside.Timestamp = ref.Add(-6 * time.Minute)

	store.Append(inside)
	store.Append(exact)
	store.Append(outside)

	recent := store.RecentWithin("acct-win", 5*time.Minute, ref)
	if len(recent) != 1 {
		t.Fatalf("recent = %d entries, want 1 (boundary is exclusive)", len(recent))
	}
	if recent[0].TransactionID != "txn-inside" {
		t.Errorf("recent entry = %s, want txn-inside", recent[0].TransactionID)
	}
}

func TestIncrementDailyCount(t *testing.T) {
	store := NewHistoryStore()
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	if got := store.IncrementDailyCount("acct-d", day); got != 1 {
		t.Errorf("first increment = %d, want 1", got)
	}
	if got := store.IncrementDailyCount("acct-d", day); got != 2 {
		t.Errorf("second increment = %d, want 2", got)
	}

	// Later hour, same calendar day: same counter.
	if got := store.IncrementDailyCount("acct-d", day.Add(10*time.Hour)); got != 3 {
		t.Errorf("same-day increment = %d, want 3", got)
	}

	// Next day starts fresh.
	if got := store.IncrementDailyCount("acct-d", day.AddDate(0, 0, 1)); got != 1 {
		t.Errorf("next-day increment = %d, want 1", got)
	}
}

func TestConcurrentDailyIncrements(t *testing.T) {
	store := NewHistoryStore()
	day := time.Now()

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.IncrementDailyCount("acct-cd", day)
		}()
	}
	wg.Wait()

	if got := store.IncrementDailyCount("acct-cd", day); got != n+1 {
		t.Errorf("counter = %d after %d concurrent increments, want %d", got, n, n+1)
	}
}

func TestConcurrentAppends(t *testing.T) {
	store := NewHistoryStore()

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tx := Transaction{
				TransactionID: fmt.Sprintf("txn-%d", i),
				AccountID:     "acct-ca",
				Amount:        decimal.NewFromInt(int64(i)),
				Currency:      "USD",
				Timestamp:     time.Now(),
			}
			store.Append(tx)
		}(i)
	}
	wg.Wait()

	if got := store.Len("acct-ca"); got != n {
		t.Errorf("history length = %d after %d concurrent appends, want no losses", got, n)
	}
}

func TestAccountsCount(t *testing.T) {
	store := NewHistoryStore()
	if got := store.Accounts(); got != 0 {
		t.Errorf("empty store Accounts() = %d, want 0", got)
	}

	store.Append(testTx("acct-one", 100))
	store.Append(testTx("acct-one", 200))
	store.Append(testTx("acct-two", 300))

	if got := store.Accounts(); got != 2 {
		t.Errorf("Accounts() = %d, want 2", got)
	}
}

func TestAccountsAreIndependent(t *testing.T) {
	store := NewHistoryStore()
	store.Append(testTx("acct-one", 100))
	store.Append(testTx("acct-two", 200))

	if got := store.Len("acct-one"); got != 1 {
		t.Errorf("acct-one length = %d, want 1", got)
	}
	if got := store.Len("acct-two"); got != 1 {
		t.Errorf("acct-two length = %d, want 1", got)
	}
}
