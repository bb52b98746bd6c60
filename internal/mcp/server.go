// Package mcp exposes the helper's calculators, composers and rule lookups as
// MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pulmo-helper/internal/app"
)

// Server represents the helper MCP server
type Server struct {
	app       *app.App
	mcpServer *mcp.Server
	tools     []string
	logger    *logrus.Logger
}

// ServerOption is a functional option for Server.
type ServerOption func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP server instance over a wired helper.
func NewServer(a *app.App, opts ...ServerOption) *Server {
	server := &Server{
		app:    a,
		logger: a.Logger,
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.logger == nil {
		server.logger = logrus.StandardLogger()
	}

	serverInfo := &mcp.Implementation{
		Name:    a.Config.MCP.ServerName,
		Version: a.Config.MCP.ServerVersion,
	}
	server.mcpServer = mcp.NewServer(serverInfo, nil)
	server.registerTools()

	server.logger.WithField("tool_count", len(server.tools)).Info("Registered MCP tools")
	return server
}

// addTool registers a typed handler and records its name.
func addTool[In any](s *Server, name, description string, h mcp.ToolHandlerFor[In, any]) {
	mcp.AddTool(s.mcpServer, &mcp.Tool{Name: name, Description: description}, h)
	s.tools = append(s.tools, name)
	s.logger.WithField("tool_name", name).Debug("Registered MCP tool")
}

// registerTools registers every helper tool
func (s *Server) registerTools() {
	addTool(s, "stage_tnm",
		"Stage non-small cell lung cancer (TNM 8th edition) from tumor, node and metastasis findings and link the stage rule.",
		s.handleStageTNM)
	addTool(s, "classify_ild_ae",
		"Apply the simplified AE-IPF criteria and list the acute exacerbation rules to open.",
		s.handleClassifyAE)
	addTool(s, "classify_ild_chronic",
		"Walk the chronic ILD differential from HRCT pattern and etiology clues, with biopsy timing.",
		s.handleClassifyChronic)
	addTool(s, "score_ariscat",
		"Score ARISCAT postoperative pulmonary complication risk with an itemized breakdown.",
		s.handleScoreARISCAT)
	addTool(s, "compute_ppo",
		"Predict postoperative FEV1 and DLCO from resected segments or lobes.",
		s.handleComputePpo)
	addTool(s, "compile_checklist",
		"Compile outpatient checklist answers into note text and list the rules matching the template.",
		s.handleCompileChecklist)
	addTool(s, "search_rules",
		"Search the rule table by category and text.",
		s.handleSearchRules)
	addTool(s, "get_rule",
		"Open one rule by name, preferring a category.",
		s.handleGetRule)
	addTool(s, "compose_bronchoscopy_report",
		"Compose the numbered bronchoscopy report text from the procedure form.",
		s.handleComposeBronchoscopy)
	addTool(s, "assign_trial",
		"Assign a COPD, asthma or other respiratory patient to registries and trials, or search study criteria.",
		s.handleAssignTrial)
}

// Tools returns the registered tool names in registration order.
func (s *Server) Tools() []string {
	return append([]string(nil), s.tools...)
}

// Start runs the MCP server on stdio until ctx is cancelled or the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting helper MCP server on stdio")
	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
