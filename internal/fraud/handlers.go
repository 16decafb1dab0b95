package fraud

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/megabank/fraudguard/internal/logging"
	"github.com/megabank/fraudguard/internal/validation"
)

// Handler provides HTTP handlers for the fraud API
type Handler struct {
	engine *Engine
	store  Store
}

// NewHandler creates a new fraud handler
func NewHandler(engine *Engine, store Store) *Handler {
	return &Handler{engine: engine, store: store}
}

// RegisterRoutes sets up the fraud routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/fraud/analyze", h.AnalyzeTransaction)
	r.GET("/fraud/assessments/:id", h.GetAssessment)
	r.GET("/fraud/accounts/:accountId/assessments", h.ListAccountAssessments)
	r.GET("/fraud/stats", h.GetStats)
}

// AnalyzeTransaction handles POST /fraud/analyze
func (h *Handler) AnalyzeTransaction(c *gin.Context) {
	ctx := c.Request.Context()
	logger := logging.L(ctx)

	var tx Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	if !validation.IsValidCurrency(tx.Currency) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_currency",
			"message": "currency must be a 3-letter ISO 4217 code",
		})
		return
	}
	if !validation.IsValidCountryCode(tx.LocationCountry) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_country",
			"message": "locationCountry must be a 2-letter ISO 3166-1 code",
		})
		return
	}
	if !tx.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_amount",
			"message": "amount must be positive",
		})
		return
	}

	tx.MerchantCategory = validation.SanitizeString(tx.MerchantCategory, validation.MaxStringLength)
	tx.LocationCity = validation.SanitizeString(tx.LocationCity, validation.MaxStringLength)

	result := h.engine.Analyze(ctx, tx)

	logger.Info("transaction analyzed",
		"transaction_id", tx.TransactionID,
		"account_id", tx.AccountID,
		"score", result.Score,
		"decision", result.Decision,
	)

	c.JSON(http.StatusOK, result)
}

// GetAssessment handles GET /fraud/assessments/:id
func (h *Handler) GetAssessment(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	result, err := h.store.Get(ctx, id)
	if err != nil {
		logging.L(ctx).Error("failed to load assessment", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load assessment",
		})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Assessment not found",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListAccountAssessments handles GET /fraud/accounts/:accountId/assessments
func (h *Handler) ListAccountAssessments(c *gin.Context) {
	ctx := c.Request.Context()
	accountID := c.Param("accountId")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_limit",
				"message": "limit must be an integer between 1 and 500",
			})
			return
		}
		limit = n
	}

	results, err := h.store.ListByAccount(ctx, accountID, limit)
	if err != nil {
		logging.L(ctx).Error("failed to list assessments", "error", err, "account_id", accountID)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to list assessments",
		})
		return
	}
	if results == nil {
		results = []*AnalysisResult{}
	}

	c.JSON(http.StatusOK, gin.H{
		"accountId":   accountID,
		"assessments": results,
		"count":       len(results),
	})
}

// GetStats handles GET /fraud/stats
func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	counts, err := h.store.CountByDecision(ctx)
	if err != nil {
		logging.L(ctx).Error("failed to count assessments", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to compute stats",
		})
		return
	}

	var total int64
	for _, n := range counts {
		total += n
	}

	c.JSON(http.StatusOK, gin.H{
		"totalAssessments": total,
		"byDecision": gin.H{
			"approve": counts[DecisionApprove],
			"review":  counts[DecisionReview],
			"decline": counts[DecisionDecline],
		},
		"modelVersion": ModelVersion,
	})
}
