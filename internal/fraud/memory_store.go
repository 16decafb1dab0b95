package fraud

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for demo and test use.
type MemoryStore struct {
	mu        sync.RWMutex
	byID      map[string]*AnalysisResult
	byAccount map[string][]*AnalysisResult
}

// NewMemoryStore creates an in-memory assessment store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:      make(map[string]*AnalysisResult),
		byAccount: make(map[string][]*AnalysisResult),
	}
}

func copyResult(r *AnalysisResult) *AnalysisResult {
	c := *r
	c.Factors = append([]string(nil), r.Factors...)
	c.Recommendations = append([]string(nil), r.Recommendations...)
	return &c
}

func (s *MemoryStore) Record(_ context.Context, result *AnalysisResult) error {
	c := copyResult(result)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[c.ID] = c
	s.byAccount[c.AccountID] = append(s.byAccount[c.AccountID], c)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return copyResult(r), nil
}

func (s *MemoryStore) ListByAccount(_ context.Context, accountID string, limit int) ([]*AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.byAccount[accountID]
	if len(all) == 0 {
		return nil, nil
	}

	start := len(all) - limit
	if limit <= 0 || start < 0 {
		start = 0
	}

	// Most recent first.
	out := make([]*AnalysisResult, 0, len(all)-start)
	for i := len(all) - 1; i >= start; i-- {
		out = append(out, copyResult(all[i]))
	}
	return out, nil
}

func (s *MemoryStore) CountByDecision(_ context.Context) (map[Decision]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[Decision]int64)
	for _, r := range s.byID {
		counts[r.Decision]++
	}
	return counts, nil
}
