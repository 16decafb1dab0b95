package fraud

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PostgresStore persists analysis results in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed assessment store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the risk_assessments table if it doesn't exist.
// The goose migration under migrations/ is the canonical schema; this keeps
// demo deployments working without running the migrate command.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS risk_assessments (
			id               VARCHAR(40) PRIMARY KEY,
			transaction_id   VARCHAR(64) NOT NULL,
			account_id       VARCHAR(64) NOT NULL,
			score            NUMERIC(4,3) NOT NULL CHECK (score >= 0 AND score <= 1),
			level            VARCHAR(10) NOT NULL CHECK (level IN ('LOW', 'MEDIUM', 'HIGH')),
			decision         VARCHAR(10) NOT NULL CHECK (decision IN ('APPROVE', 'REVIEW', 'DECLINE')),
			factors          JSONB NOT NULL DEFAULT '[]',
			recommendations  JSONB NOT NULL DEFAULT '[]',
			model_version    VARCHAR(16) NOT NULL,
			analyzed_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_risk_assessments_account
			ON risk_assessments (account_id, analyzed_at DESC);

		CREATE INDEX IF NOT EXISTS idx_risk_assessments_declines
			ON risk_assessments (analyzed_at DESC) WHERE decision = 'DECLINE';
	`)
	return err
}

func (s *PostgresStore) Record(ctx context.Context, result *AnalysisResult) error {
	factorsJSON, err := json.Marshal(result.Factors)
	if err != nil {
		return fmt.Errorf("failed to marshal factors: %w", err)
	}
	recsJSON, err := json.Marshal(result.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO risk_assessments
			(id, transaction_id, account_id, score, level, decision, factors, recommendations, model_version, analyzed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		result.ID,
		result.TransactionID,
		result.AccountID,
		result.Score,
		string(result.Level),
		string(result.Decision),
		factorsJSON,
		recsJSON,
		result.ModelVersion,
		result.AnalyzedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record assessment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*AnalysisResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, transaction_id, account_id, score, level, decision, factors, recommendations, model_version, analyzed_at
		FROM risk_assessments
		WHERE id = $1
	`, id)

	r, err := scanAssessment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) ListByAccount(ctx context.Context, accountID string, limit int) ([]*AnalysisResult, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, account_id, score, level, decision, factors, recommendations, model_version, analyzed_at
		FROM risk_assessments
		WHERE account_id = $1
		ORDER BY analyzed_at DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*AnalysisResult
	for rows.Next() {
		r, err := scanAssessment(rows)
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountByDecision(ctx context.Context) (map[Decision]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT decision, COUNT(*)
		FROM risk_assessments
		GROUP BY decision
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count assessments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[Decision]int64)
	for rows.Next() {
		var decision string
		var n int64
		if err := rows.Scan(&decision, &n); err != nil {
			continue
		}
		counts[Decision(decision)] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*AnalysisResult, error) {
	var r AnalysisResult
	var level, decision string
	var factorsJSON, recsJSON []byte
	var analyzedAt time.Time

	if err := row.Scan(
		&r.ID, &r.TransactionID, &r.AccountID, &r.Score,
		&level, &decision, &factorsJSON, &recsJSON,
		&r.ModelVersion, &analyzedAt,
	); err != nil {
		return nil, err
	}

	r.Level = RiskLevel(level)
	r.Decision = Decision(decision)
	r.AnalyzedAt = analyzedAt
	_ = json.Unmarshal(factorsJSON, &r.Factors)
	_ = json.Unmarshal(recsJSON, &r.Recommendations)
	return &r, nil
}
