// Package fraud implements real-time risk scoring for financial transactions.
//
// Every transaction is evaluated against six independent risk dimensions:
// amount, velocity, geography, time-of-day, device/IP, and merchant category.
// Contributions are summed and clamped to [0, 1]; transactions at or above the
// decline threshold are rejected before settlement.
package fraud

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies the kind of transaction being analyzed.
type TransactionType string

const (
	TypePurchase   TransactionType = "PURCHASE"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
	TypeTransfer   TransactionType = "TRANSFER"
	TypeRefund     TransactionType = "REFUND"
	TypePayment    TransactionType = "PAYMENT"
	TypeDeposit    TransactionType = "DEPOSIT"
)

// RiskLevel is the three-band classification derived from the risk score.
type RiskLevel string

const (
	LevelLow    RiskLevel = "LOW"
	LevelMedium RiskLevel = "MEDIUM"
	LevelHigh   RiskLevel = "HIGH"
)

// Decision is the action recommendation derived from the risk score.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReview  Decision = "REVIEW"
	DecisionDecline Decision = "DECLINE"
)

// Score thresholds shared by risk level and decision. Boundary values belong
// to the higher band.
const (
	ReviewThreshold  = 0.3
	DeclineThreshold = 0.7
)

// ModelVersion tags every result with the scoring model build.
const ModelVersion = "1.0"

// LevelFromScore maps a clamped risk score onto its band.
func LevelFromScore(score float64) RiskLevel {
	switch {
	case score < ReviewThreshold:
		return LevelLow
	case score < DeclineThreshold:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// DecisionFromScore maps a clamped risk score onto a decision. It uses the
// same cut points as LevelFromScore; the two are coupled on purpose.
func DecisionFromScore(score float64) Decision {
	switch {
	case score < ReviewThreshold:
		return DecisionApprove
	case score < DeclineThreshold:
		return DecisionReview
	default:
		return DecisionDecline
	}
}

// Transaction is a validated financial transaction to be scored.
// Required fields are enforced by the transport layer; the optional fields
// (IP, device, location, merchant category, card-present) are treated as
// "no signal" by the analyzers when absent.
type Transaction struct {
	TransactionID     string          `json:"transactionId" binding:"required"`
	AccountID         string          `json:"accountId" binding:"required"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	Currency          string          `json:"currency" binding:"required,len=3"`
	MerchantID        string          `json:"merchantId" binding:"required"`
	MerchantCategory  string          `json:"merchantCategory,omitempty"`
	Timestamp         time.Time       `json:"transactionTimestamp" binding:"required"`
	IPAddress         string          `json:"ipAddress,omitempty"`
	DeviceFingerprint string          `json:"deviceFingerprint,omitempty"`
	LocationCountry   string          `json:"locationCountry,omitempty"`
	LocationCity      string          `json:"locationCity,omitempty"`
	TransactionType   TransactionType `json:"transactionType,omitempty"`
	IsCardPresent     *bool           `json:"isCardPresent,omitempty"`
}

// AnalysisResult is the immutable verdict for a single transaction.
type AnalysisResult struct {
	ID              string    `json:"id"`
	TransactionID   string    `json:"transactionId"`
	AccountID       string    `json:"accountId"`
	Score           float64   `json:"riskScore"`
	Level           RiskLevel `json:"riskLevel"`
	Decision        Decision  `json:"decision"`
	Factors         []string  `json:"riskFactors"`
	Recommendations []string  `json:"recommendations"`
	AnalyzedAt      time.Time `json:"analysisTimestamp"`
	ModelVersion    string    `json:"modelVersion"`
}
