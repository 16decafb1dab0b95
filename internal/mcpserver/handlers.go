package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	client *FraudGuardClient
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *FraudGuardClient) *Handlers {
	return &Handlers{client: client}
}

// HandleAnalyzeTransaction scores a transaction through the fraud API.
func (h *Handlers) HandleAnalyzeTransaction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	required := map[string]string{
		"transaction_id": req.GetString("transaction_id", ""),
		"account_id":     req.GetString("account_id", ""),
		"amount":         req.GetString("amount", ""),
		"currency":       req.GetString("currency", ""),
		"merchant_id":    req.GetString("merchant_id", ""),
		"timestamp":      req.GetString("timestamp", ""),
	}
	for name, v := range required {
		if v == "" {
			return mcp.NewToolResultError(name + " is required"), nil
		}
	}

	tx := map[string]any{
		"transactionId":        required["transaction_id"],
		"accountId":            required["account_id"],
		"amount":               required["amount"],
		"currency":             required["currency"],
		"merchantId":           required["merchant_id"],
		"transactionTimestamp": required["timestamp"],
	}
	if v := req.GetString("merchant_category", ""); v != "" {
		tx["merchantCategory"] = v
	}
	if v := req.GetString("location_country", ""); v != "" {
		tx["locationCountry"] = v
	}
	if v := req.GetString("ip_address", ""); v != "" {
		tx["ipAddress"] = v
	}
	if v := req.GetString("device_fingerprint", ""); v != "" {
		tx["deviceFingerprint"] = v
	}

	raw, err := h.client.AnalyzeTransaction(ctx, tx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Analysis failed: %v", err)), nil
	}

	text, err := formatAssessment(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse assessment: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetAssessment looks up a stored assessment.
func (h *Handlers) HandleGetAssessment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("assessment_id", "")
	if id == "" {
		return mcp.NewToolResultError("assessment_id is required"), nil
	}

	raw, err := h.client.GetAssessment(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get assessment: %v", err)), nil
	}

	text, err := formatAssessment(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse assessment: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleListAccountAssessments lists recent assessments for an account.
func (h *Handlers) HandleListAccountAssessments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	accountID := req.GetString("account_id", "")
	if accountID == "" {
		return mcp.NewToolResultError("account_id is required"), nil
	}
	limit := req.GetInt("limit", 20)

	raw, err := h.client.ListAccountAssessments(ctx, accountID, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list assessments: %v", err)), nil
	}

	text, err := formatAssessmentList(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse assessments: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetServiceStats returns service-wide decision totals.
func (h *Handlers) HandleGetServiceStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.client.GetStats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get stats: %v", err)), nil
	}

	return mcp.NewToolResultText(formatJSON(raw)), nil
}

// --- Formatting helpers ---

func formatAssessment(raw json.RawMessage) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Risk Assessment:\n")
	if v := getString(m, "id"); v != "" {
		fmt.Fprintf(&sb, "  ID: %s\n", v)
	}
	if v := getString(m, "transactionId"); v != "" {
		fmt.Fprintf(&sb, "  Transaction: %s\n", v)
	}
	if v := getString(m, "accountId"); v != "" {
		fmt.Fprintf(&sb, "  Account: %s\n", v)
	}
	if v, ok := getFloat(m, "riskScore"); ok {
		fmt.Fprintf(&sb, "  Score: %.2f\n", v)
	}
	if v := getString(m, "riskLevel"); v != "" {
		fmt.Fprintf(&sb, "  Level: %s\n", v)
	}
	if v := getString(m, "decision"); v != "" {
		fmt.Fprintf(&sb, "  Decision: %s\n", v)
	}

	if factors := getStrings(m, "riskFactors"); len(factors) > 0 {
		sb.WriteString("  Risk factors:\n")
		for _, f := range factors {
			fmt.Fprintf(&sb, "    - %s\n", f)
		}
	}
	if recs := getStrings(m, "recommendations"); len(recs) > 0 {
		sb.WriteString("  Recommendations:\n")
		for _, r := range recs {
			fmt.Fprintf(&sb, "    - %s\n", r)
		}
	}

	return sb.String(), nil
}

func formatAssessmentList(raw json.RawMessage) (string, error) {
	var resp struct {
		AccountID   string           `json:"accountId"`
		Assessments []map[string]any `json:"assessments"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("unexpected assessments response format")
	}

	if len(resp.Assessments) == 0 {
		return fmt.Sprintf("No assessments found for account %s.", resp.AccountID), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d assessment(s) for account %s (most recent first):\n\n", len(resp.Assessments), resp.AccountID)
	for i, a := range resp.Assessments {
		score, _ := getFloat(a, "riskScore")
		fmt.Fprintf(&sb, "%d. %s\n", i+1, getString(a, "id"))
		fmt.Fprintf(&sb, "   Transaction: %s | Score: %.2f | %s\n",
			getString(a, "transactionId"), score, getString(a, "decision"))
		if at := getString(a, "analysisTimestamp"); at != "" {
			fmt.Fprintf(&sb, "   Analyzed: %s\n", at)
		}
		if i < len(resp.Assessments)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

func formatJSON(raw json.RawMessage) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return string(raw)
	}
	return pretty.String()
}

// getString extracts a string value from a map.
func getString(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// getFloat extracts a float64 value from a map.
func getFloat(m map[string]any, key string) (float64, bool) {
	if v, ok := m[key]; ok {
		if f, ok := v.(float64); ok {
			return f, true
		}
	}
	return 0, false
}

// getStrings extracts a string slice from a map.
func getStrings(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
