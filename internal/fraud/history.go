package fraud

import (
	"hash/fnv"
	"sync"
	"time"
)

// historyShardCount fixes the number of lock stripes. Keys are spread by
// FNV-1a, so unrelated accounts rarely contend on the same shard.
const historyShardCount = 256

// dailyKeyFormat is the calendar-day component of the daily counter key.
const dailyKeyFormat = "2006-01-02"

type historyShard struct {
	mu      sync.RWMutex
	history map[string][]Transaction
	daily   map[string]int
}

// HistoryStore owns all per-account behavioral state: the ordered record of
// analyzed transactions and the per-day transaction counters. It is the only
// mutable state shared between concurrent analyses.
//
// History is append-only and never evicted. Retention is an open question for
// a production deployment; this store reproduces unbounded growth.
type HistoryStore struct {
	shards [historyShardCount]historyShard
}

// NewHistoryStore creates an empty lock-striped history store.
func NewHistoryStore() *HistoryStore {
	s := &HistoryStore{}
	for i := range s.shards {
		s.shards[i].history = make(map[string][]Transaction)
		s.shards[i].daily = make(map[string]int)
	}
	return s
}

func (s *HistoryStore) shard(accountID string) *historyShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(accountID))
	return &s.shards[h.Sum32()%historyShardCount]
}

// Append commits a transaction into the account's history. It must be called
// exactly once per analyzed transaction, after all scoring reads for that
// transaction are done.
func (s *HistoryStore) Append(tx Transaction) {
	sh := s.shard(tx.AccountID)
	sh.mu.Lock()
	sh.history[tx.AccountID] = append(sh.history[tx.AccountID], tx)
	sh.mu.Unlock()
}

// History returns a copy of all recorded transactions for the account, in
// analysis order. Unknown accounts yield an empty slice.
func (s *HistoryStore) History(accountID string) []Transaction {
	sh := s.shard(accountID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	entries := sh.history[accountID]
	out := make([]Transaction, len(entries))
	copy(out, entries)
	return out
}

// RecentWithin returns the account's transactions whose timestamp is strictly
// after ref minus d, preserving order.
func (s *HistoryStore) RecentWithin(accountID string, d time.Duration, ref time.Time) []Transaction {
	cutoff := ref.Add(-d)

	sh := s.shard(accountID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	var out []Transaction
	for _, tx := range sh.history[accountID] {
		if tx.Timestamp.After(cutoff) {
			out = append(out, tx)
		}
	}
	return out
}

// IncrementDailyCount atomically bumps the per-day counter for the account
// and returns the new value. The first increment for a new (account, day)
// pair returns 1.
func (s *HistoryStore) IncrementDailyCount(accountID string, day time.Time) int {
	key := accountID + ":" + day.Format(dailyKeyFormat)

	sh := s.shard(accountID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.daily[key]++
	return sh.daily[key]
}

// Accounts reports how many accounts have recorded history.
func (s *HistoryStore) Accounts() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		n += len(sh.history)
		sh.mu.RUnlock()
	}
	return n
}

// Len reports how many transactions have been recorded for the account.
func (s *HistoryStore) Len(accountID string) int {
	sh := s.shard(accountID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return len(sh.history[accountID])
}
