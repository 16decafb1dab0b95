package fraud

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Analyzer scores one risk dimension of a transaction. Contributions are
// additive and non-negative; they are not probabilities. Clamping to 1.0
// happens once, at aggregation.
type Analyzer interface {
	Name() string
	Analyze(tx Transaction, now time.Time) (float64, []string)
}

// Scoring constants. These are compiled in on purpose: the engine has no
// external configuration surface.
var (
	highAmountThreshold     = decimal.NewFromInt(10000)
	unusualAmountMultiplier = decimal.NewFromInt(5)
)

const (
	maxDailyTransactions  = 10
	rapidTransactionCount = 3
	velocityWindow        = 5 * time.Minute

	highAmountContribution    = 0.3
	unusualAmountContribution = 0.2
	dailyCountContribution    = 0.2
	rapidBurstContribution    = 0.25
	riskCountryContribution   = 0.4
	geoMismatchContribution   = 0.3
	unusualHourContribution   = 0.1
	newDeviceContribution     = 0.15
	suspiciousIPContribution  = 0.2
	riskMerchantContribution  = 0.15
)

var highRiskCountries = map[string]bool{
	"XX": true,
	"YY": true,
	"ZZ": true,
}

var highRiskMerchantCategories = map[string]bool{
	"gambling":       true,
	"adult":          true,
	"cryptocurrency": true,
	"money_transfer": true,
}

const suspiciousIPPrefix = "10.0.0"

// GeoChecker decides whether a transaction's location is inconsistent with
// the account's recent activity. The default implementation never fires; it
// exists as a seam for a real geo-velocity check.
type GeoChecker interface {
	Inconsistent(tx Transaction, recent []Transaction) bool
}

// NoopGeoChecker reports no inconsistency, ever.
type NoopGeoChecker struct{}

func (NoopGeoChecker) Inconsistent(Transaction, []Transaction) bool { return false }

// DeviceClassifier decides whether a device fingerprint belongs to a device
// the account has used before. The default treats every fingerprint as new:
// there is no persistent device registry in this design.
type DeviceClassifier interface {
	IsNewDevice(tx Transaction) bool
}

// AlwaysNewClassifier flags every present fingerprint as a new device.
type AlwaysNewClassifier struct{}

func (AlwaysNewClassifier) IsNewDevice(Transaction) bool { return true }

// -----------------------------------------------------------------------------
// Amount
// -----------------------------------------------------------------------------

type amountAnalyzer struct {
	history *HistoryStore
}

func (a *amountAnalyzer) Name() string { return "amount" }

func (a *amountAnalyzer) Analyze(tx Transaction, _ time.Time) (float64, []string) {
	var risk float64
	var factors []string

	if tx.Amount.GreaterThan(highAmountThreshold) {
		risk += highAmountContribution
		factors = append(factors, "High transaction amount")
	}

	past := a.history.History(tx.AccountID)
	if len(past) > 0 {
		sum := decimal.Zero
		for _, t := range past {
			sum = sum.Add(t.Amount)
		}
		avg := sum.Div(decimal.NewFromInt(int64(len(past))))
		if tx.Amount.GreaterThan(avg.Mul(unusualAmountMultiplier)) {
			risk += unusualAmountContribution
			factors = append(factors, "Unusual amount compared to account history")
		}
	}

	return risk, factors
}

// -----------------------------------------------------------------------------
// Velocity
// -----------------------------------------------------------------------------

type velocityAnalyzer struct {
	history *HistoryStore
}

func (a *velocityAnalyzer) Name() string { return "velocity" }

// Analyze bumps the account's day-bucket counter (keyed by the transaction's
// own calendar day) and checks for bursts of recent activity. The burst
// window is anchored on the evaluation wall clock, not the transaction
// timestamp, so backdated transactions fall outside it.
func (a *velocityAnalyzer) Analyze(tx Transaction, now time.Time) (float64, []string) {
	var risk float64
	var factors []string

	count := a.history.IncrementDailyCount(tx.AccountID, tx.Timestamp)
	if count > maxDailyTransactions {
		risk += dailyCountContribution
		factors = append(factors, "High daily transaction count")
	}

	recent := a.history.RecentWithin(tx.AccountID, velocityWindow, now)
	if len(recent) >= rapidTransactionCount {
		risk += rapidBurstContribution
		factors = append(factors, "Multiple transactions within short time frame")
	}

	return risk, factors
}

// -----------------------------------------------------------------------------
// Geographic
// -----------------------------------------------------------------------------

type geoAnalyzer struct {
	history *HistoryStore
	checker GeoChecker
}

func (a *geoAnalyzer) Name() string { return "geographic" }

func (a *geoAnalyzer) Analyze(tx Transaction, now time.Time) (float64, []string) {
	var risk float64
	var factors []string

	if tx.LocationCountry != "" && highRiskCountries[tx.LocationCountry] {
		risk += riskCountryContribution
		factors = append(factors, "Transaction from high-risk country: "+tx.LocationCountry)
	}

	recent := a.history.RecentWithin(tx.AccountID, velocityWindow, now)
	if a.checker.Inconsistent(tx, recent) {
		risk += geoMismatchContribution
		factors = append(factors, "Geographic inconsistency detected")
	}

	return risk, factors
}

// -----------------------------------------------------------------------------
// Time of day
// -----------------------------------------------------------------------------

type timeOfDayAnalyzer struct{}

func (timeOfDayAnalyzer) Name() string { return "time_of_day" }

func (timeOfDayAnalyzer) Analyze(tx Transaction, _ time.Time) (float64, []string) {
	// hour > 23 can never be true on a 24-hour clock; only the early-morning
	// arm fires in practice. Kept as written for behavioral compatibility.
	hour := tx.Timestamp.Hour()
	if hour < 6 || hour > 23 {
		return unusualHourContribution, []string{"Transaction during unusual hours"}
	}
	return 0, nil
}

// -----------------------------------------------------------------------------
// Device / IP
// -----------------------------------------------------------------------------

type deviceAnalyzer struct {
	devices DeviceClassifier
}

func (a *deviceAnalyzer) Name() string { return "device" }

func (a *deviceAnalyzer) Analyze(tx Transaction, _ time.Time) (float64, []string) {
	var risk float64
	var factors []string

	if tx.DeviceFingerprint != "" && a.devices.IsNewDevice(tx) {
		risk += newDeviceContribution
		factors = append(factors, "Transaction from new device")
	}

	if tx.IPAddress != "" && strings.HasPrefix(tx.IPAddress, suspiciousIPPrefix) {
		risk += suspiciousIPContribution
		factors = append(factors, "Transaction from suspicious IP address")
	}

	return risk, factors
}

// -----------------------------------------------------------------------------
// Merchant category
// -----------------------------------------------------------------------------

type merchantAnalyzer struct{}

func (merchantAnalyzer) Name() string { return "merchant" }

func (merchantAnalyzer) Analyze(tx Transaction, _ time.Time) (float64, []string) {
	if tx.MerchantCategory != "" && highRiskMerchantCategories[tx.MerchantCategory] {
		return riskMerchantContribution, []string{"High-risk merchant category: " + tx.MerchantCategory}
	}
	return 0, nil
}
