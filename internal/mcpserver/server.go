package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all FraudGuard tools registered.
func NewMCPServer(cfg Config) *server.MCPServer {
	s := server.NewMCPServer("fraudguard", "1.0.0")
	client := NewFraudGuardClient(cfg)
	h := NewHandlers(client)

	s.AddTool(ToolAnalyzeTransaction, h.HandleAnalyzeTransaction)
	s.AddTool(ToolGetAssessment, h.HandleGetAssessment)
	s.AddTool(ToolListAccountAssessments, h.HandleListAccountAssessments)
	s.AddTool(ToolGetServiceStats, h.HandleGetServiceStats)

	return s
}
