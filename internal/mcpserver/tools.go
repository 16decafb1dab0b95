package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the FraudGuard MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolAnalyzeTransaction = mcp.NewTool("analyze_transaction",
	mcp.WithDescription(
		"Score a financial transaction for fraud risk. "+
			"Returns a risk score in [0,1], a risk level (LOW/MEDIUM/HIGH), a decision "+
			"(APPROVE/REVIEW/DECLINE), the contributing risk factors, and operator recommendations. "+
			"Scoring commits the transaction into the account's behavioral history, so only submit "+
			"real transactions, not what-if probes."),
	mcp.WithString("transaction_id",
		mcp.Required(),
		mcp.Description("Unique transaction identifier (e.g. 'txn-20250310-0001')")),
	mcp.WithString("account_id",
		mcp.Required(),
		mcp.Description("Account identifier the transaction belongs to")),
	mcp.WithString("amount",
		mcp.Required(),
		mcp.Description("Transaction amount as a decimal string (e.g. '149.99')")),
	mcp.WithString("currency",
		mcp.Required(),
		mcp.Description("3-letter ISO 4217 currency code (e.g. 'USD')")),
	mcp.WithString("merchant_id",
		mcp.Required(),
		mcp.Description("Merchant identifier")),
	mcp.WithString("timestamp",
		mcp.Required(),
		mcp.Description("Transaction timestamp in RFC 3339 format (e.g. '2025-03-10T12:00:00Z')")),
	mcp.WithString("merchant_category",
		mcp.Description("Merchant category (e.g. 'groceries', 'gambling')")),
	mcp.WithString("location_country",
		mcp.Description("2-letter ISO 3166-1 country code where the transaction originated")),
	mcp.WithString("ip_address",
		mcp.Description("Client IP address, if known")),
	mcp.WithString("device_fingerprint",
		mcp.Description("Device fingerprint, if known")),
)

var ToolGetAssessment = mcp.NewTool("get_assessment",
	mcp.WithDescription(
		"Look up a stored risk assessment by its ID. "+
			"Returns the full verdict including score, decision, risk factors, and recommendations."),
	mcp.WithString("assessment_id",
		mcp.Required(),
		mcp.Description("The assessment ID from a previous analyze_transaction result (e.g. 'asmt_...')")),
)

var ToolListAccountAssessments = mcp.NewTool("list_account_assessments",
	mcp.WithDescription(
		"List recent risk assessments for an account, most recent first. "+
			"Use this to review an account's fraud history before making a manual decision."),
	mcp.WithString("account_id",
		mcp.Required(),
		mcp.Description("Account identifier to list assessments for")),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of assessments to return (default 20)")),
)

var ToolGetServiceStats = mcp.NewTool("get_service_stats",
	mcp.WithDescription(
		"Get FraudGuard service statistics: total assessments and the breakdown by decision "+
			"(approved, flagged for review, declined) since the service started."),
)
