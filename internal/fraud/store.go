package fraud

import "context"

// Store persists analysis results for audit and lookup. It holds verdicts
// only; the behavioral state the engine scores against lives in HistoryStore
// and is never persisted.
type Store interface {
	Record(ctx context.Context, result *AnalysisResult) error
	Get(ctx context.Context, id string) (*AnalysisResult, error)
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*AnalysisResult, error)
	CountByDecision(ctx context.Context) (map[Decision]int64, error)
}
