package fraud

import (
	"context"
	"time"

	"github.com/megabank/fraudguard/internal/idgen"
	"github.com/megabank/fraudguard/internal/metrics"
	"github.com/megabank/fraudguard/internal/traces"
)

// Notifier receives assessments that need operator attention.
type Notifier interface {
	NotifyAssessment(result *AnalysisResult)
}

// Engine orchestrates the analyzers, applies the decision policy, and commits
// each transaction into the account history.
//
// Analyze is safe for concurrent use. Two overlapping analyses for the same
// account will not corrupt state, but neither is guaranteed to observe the
// other's transaction: there is no transaction boundary spanning the scoring
// reads and the final Append.
type Engine struct {
	history   *HistoryStore
	analyzers []Analyzer
	store     Store
	notifier  Notifier
	geo       GeoChecker
	devices   DeviceClassifier
}

// Option configures the engine.
type Option func(*Engine)

// WithGeoChecker replaces the geographic-inconsistency strategy.
func WithGeoChecker(g GeoChecker) Option {
	return func(e *Engine) { e.geo = g }
}

// WithDeviceClassifier replaces the new-device strategy.
func WithDeviceClassifier(d DeviceClassifier) Option {
	return func(e *Engine) { e.devices = d }
}

// WithNotifier sets a sink for REVIEW and DECLINE assessments.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// NewEngine creates a scoring engine backed by the given audit store.
// The store may be nil; auditing is best-effort and never blocks scoring.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		history: NewHistoryStore(),
		store:   store,
		geo:     NoopGeoChecker{},
		devices: AlwaysNewClassifier{},
	}
	for _, opt := range opts {
		opt(e)
	}

	// Fixed execution order; it determines factor ordering in results.
	e.analyzers = []Analyzer{
		&amountAnalyzer{history: e.history},
		&velocityAnalyzer{history: e.history},
		&geoAnalyzer{history: e.history, checker: e.geo},
		timeOfDayAnalyzer{},
		&deviceAnalyzer{devices: e.devices},
		merchantAnalyzer{},
	}
	return e
}

// History exposes the engine's account history store. Intended for stats
// endpoints and tests; external callers must not mutate through it.
func (e *Engine) History() *HistoryStore {
	return e.history
}

// TrackedAccounts reports how many accounts currently hold history.
func (e *Engine) TrackedAccounts() int {
	return e.history.Accounts()
}

// Analyze scores a validated transaction and commits it into the account's
// history. It always succeeds: malformed input is rejected upstream, and
// absent optional fields contribute no signal.
func (e *Engine) Analyze(ctx context.Context, tx Transaction) *AnalysisResult {
	start := time.Now()
	ctx, span := traces.StartSpan(ctx, "fraud.analyze",
		traces.TransactionID(tx.TransactionID),
		traces.AccountID(tx.AccountID),
	)
	defer span.End()

	var score float64
	var factors []string
	for _, a := range e.analyzers {
		contribution, fs := a.Analyze(tx, start)
		score += contribution
		factors = append(factors, fs...)
	}

	// Contributions are non-negative, so only the upper bound needs clamping.
	if score > 1.0 {
		score = 1.0
	}

	level := LevelFromScore(score)
	decision := DecisionFromScore(score)

	// The transaction becomes visible to subsequent analyses for this account
	// only now, after its own scoring reads are complete.
	e.history.Append(tx)

	result := &AnalysisResult{
		ID:              idgen.WithPrefix("asmt_"),
		TransactionID:   tx.TransactionID,
		AccountID:       tx.AccountID,
		Score:           score,
		Level:           level,
		Decision:        decision,
		Factors:         factors,
		Recommendations: recommendationsFor(level),
		AnalyzedAt:      time.Now(),
		ModelVersion:    ModelVersion,
	}

	span.SetAttributes(traces.RiskScore(score), traces.RiskDecision(string(decision)))

	metrics.AnalysesTotal.WithLabelValues(string(decision)).Inc()
	metrics.RiskScores.Observe(score)
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	// Persist asynchronously (best-effort audit trail).
	if e.store != nil {
		go func() {
			_ = e.store.Record(context.Background(), result)
		}()
	}

	if e.notifier != nil && decision != DecisionApprove {
		e.notifier.NotifyAssessment(result)
	}

	return result
}

// recommendationsFor derives operator guidance purely from the risk level.
// The count per level (1/2/3) is part of the contract; the wording is not.
func recommendationsFor(level RiskLevel) []string {
	switch level {
	case LevelMedium:
		return []string{
			"Additional verification recommended",
			"Monitor account for suspicious activity",
		}
	case LevelHigh:
		return []string{
			"Manual review required",
			"Contact customer for verification",
			"Consider temporary account restrictions",
		}
	default:
		return []string{"Process transaction normally"}
	}
}
