// Package mcp provides an MCP (Model Context Protocol) server for mastostat.
// This allows AI agents to pull instance reports through MCP tools instead of
// the CLI.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/api"
	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/report"
	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/stats"
)

// Server wraps the MCP server with mastostat-specific functionality.
type Server struct {
	mcpServer    *server.MCPServer
	log          zerolog.Logger
	defaultToken string
	apiTimeout   time.Duration
	snapshots    api.SnapshotStore
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration.
type Config struct {
	Tools      []string          // Which tools to expose (empty = all)
	Timeout    time.Duration     // Inactivity timeout (0 = no timeout)
	APITimeout time.Duration     // Per-request HTTP timeout (0 = api.DefaultTimeout)
	Token      string            // Default bearer token for all tool calls
	Snapshots  api.SnapshotStore // Snapshot cache shared with the CLI (nil = no caching)
	Logger     zerolog.Logger    // Progress and failure logging
}

// DefaultTools is the default set of tools to expose.
var DefaultTools = []string{"mastodon_report", "mastodon_instance_info", "mastodon_account_stats", "mastodon_timeline_stats"}

// AllTools lists all available tools.
var AllTools = []string{"mastodon_report", "mastodon_instance_info", "mastodon_account_stats", "mastodon_timeline_stats"}

// New creates a new MCP server for mastostat.
func New(cfg Config) (*Server, error) {
	mcpServer := server.NewMCPServer(
		"mastostat",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		log:          cfg.Logger,
		defaultToken: cfg.Token,
		apiTimeout:   cfg.APITimeout,
		snapshots:    cfg.Snapshots,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = DefaultTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server.
func (s *Server) registerTool(name string) error {
	switch name {
	case "mastodon_report":
		return s.registerReportTool()
	case "mastodon_instance_info":
		return s.registerInstanceInfoTool()
	case "mastodon_account_stats":
		return s.registerAccountStatsTool()
	case "mastodon_timeline_stats":
		return s.registerTimelineStatsTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport.
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}

	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded.
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			fmt.Fprintf(os.Stderr, "mastostat serve: timeout after %v of inactivity\n", s.timeout)
			os.Exit(0)
		}
	}
}

// updateActivity updates the last activity timestamp.
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the list of registered tools.
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry holds the schema definitions for all tools.
// These mirror the mcp.NewTool() definitions in the register*Tool() functions.
var toolSchemaRegistry = map[string]ToolSchema{
	"mastodon_report": {
		Name:        "mastodon_report",
		Description: "Generate a full analysis report for a Mastodon instance: metadata, weekly activity, account statistics, and a local timeline sample.",
		Parameters: []ParameterSchema{
			{Name: "instance", Type: "string", Description: "Instance base URL, e.g. https://mastodon.social", Required: true},
			{Name: "token", Type: "string", Description: "Bearer token; admin scope unlocks account statistics"},
			{Name: "offline", Type: "boolean", Description: "Render from cached snapshots instead of the network"},
		},
	},
	"mastodon_instance_info": {
		Name:        "mastodon_instance_info",
		Description: "Fetch instance metadata: name, version, description, and user/post/domain counters.",
		Parameters: []ParameterSchema{
			{Name: "instance", Type: "string", Description: "Instance base URL", Required: true},
			{Name: "token", Type: "string", Description: "Bearer token (optional)"},
		},
	},
	"mastodon_account_stats": {
		Name:        "mastodon_account_stats",
		Description: "Aggregate the admin account roster: local/remote split, activity windows, post-count buckets, and top posters. Requires an admin token.",
		Parameters: []ParameterSchema{
			{Name: "instance", Type: "string", Description: "Instance base URL", Required: true},
			{Name: "token", Type: "string", Description: "Admin-scoped bearer token"},
			{Name: "page_limit", Type: "number", Description: "Roster page size (default: 100)"},
		},
	},
	"mastodon_timeline_stats": {
		Name:        "mastodon_timeline_stats",
		Description: "Sample the local public timeline and count media posts, content warnings, replies, and boosts.",
		Parameters: []ParameterSchema{
			{Name: "instance", Type: "string", Description: "Instance base URL", Required: true},
			{Name: "token", Type: "string", Description: "Bearer token (optional)"},
			{Name: "limit", Type: "number", Description: "Timeline sample size (default: 100)"},
		},
	},
}

// GetToolSchemas returns schemas for all registered tools.
func (s *Server) GetToolSchemas() []ToolSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schemas := make([]ToolSchema, 0, len(s.tools))
	for name := range s.tools {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the JSON result string or an error.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s (run 'mastostat call --list' to see available tools)", name)
	}

	instance, _ := args["instance"].(string)
	if instance == "" {
		return "", fmt.Errorf("instance parameter is required")
	}
	token, _ := args["token"].(string)

	switch name {
	case "mastodon_report":
		offline, _ := args["offline"].(bool)
		return s.executeReport(ctx, instance, token, offline)

	case "mastodon_instance_info":
		return s.executeInstanceInfo(ctx, instance, token)

	case "mastodon_account_stats":
		pageLimit := api.DefaultPageLimit
		if l, ok := args["page_limit"].(float64); ok {
			pageLimit = int(l)
		}
		return s.executeAccountStats(ctx, instance, token, pageLimit)

	case "mastodon_timeline_stats":
		limit := 100
		if l, ok := args["limit"].(float64); ok {
			limit = int(l)
		}
		return s.executeTimelineStats(ctx, instance, token, limit)

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// registerReportTool registers the mastodon_report tool.
func (s *Server) registerReportTool() error {
	tool := mcp.NewTool("mastodon_report",
		mcp.WithDescription("Generate a full analysis report for a Mastodon instance: metadata, weekly activity, account statistics, and a local timeline sample."),
		mcp.WithString("instance",
			mcp.Required(),
			mcp.Description("Instance base URL, e.g. https://mastodon.social"),
		),
		mcp.WithString("token",
			mcp.Description("Bearer token; admin scope unlocks account statistics"),
		),
		mcp.WithBoolean("offline",
			mcp.Description("Render from cached snapshots instead of the network"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleReport)
	return nil
}

// registerInstanceInfoTool registers the mastodon_instance_info tool.
func (s *Server) registerInstanceInfoTool() error {
	tool := mcp.NewTool("mastodon_instance_info",
		mcp.WithDescription("Fetch instance metadata: name, version, description, and user/post/domain counters."),
		mcp.WithString("instance",
			mcp.Required(),
			mcp.Description("Instance base URL"),
		),
		mcp.WithString("token",
			mcp.Description("Bearer token (optional)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleInstanceInfo)
	return nil
}

// registerAccountStatsTool registers the mastodon_account_stats tool.
func (s *Server) registerAccountStatsTool() error {
	tool := mcp.NewTool("mastodon_account_stats",
		mcp.WithDescription("Aggregate the admin account roster: local/remote split, activity windows, post-count buckets, and top posters. Requires an admin token."),
		mcp.WithString("instance",
			mcp.Required(),
			mcp.Description("Instance base URL"),
		),
		mcp.WithString("token",
			mcp.Description("Admin-scoped bearer token"),
		),
		mcp.WithNumber("page_limit",
			mcp.Description("Roster page size (default: 100)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleAccountStats)
	return nil
}

// registerTimelineStatsTool registers the mastodon_timeline_stats tool.
func (s *Server) registerTimelineStatsTool() error {
	tool := mcp.NewTool("mastodon_timeline_stats",
		mcp.WithDescription("Sample the local public timeline and count media posts, content warnings, replies, and boosts."),
		mcp.WithString("instance",
			mcp.Required(),
			mcp.Description("Instance base URL"),
		),
		mcp.WithString("token",
			mcp.Description("Bearer token (optional)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Timeline sample size (default: 100)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleTimelineStats)
	return nil
}

// Tool handlers

func (s *Server) handleReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	instance, ok := args["instance"].(string)
	if !ok || instance == "" {
		return mcp.NewToolResultError("instance parameter is required"), nil
	}

	token, _ := args["token"].(string)
	offline, _ := args["offline"].(bool)

	result, err := s.executeReport(ctx, instance, token, offline)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleInstanceInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	instance, ok := args["instance"].(string)
	if !ok || instance == "" {
		return mcp.NewToolResultError("instance parameter is required"), nil
	}

	token, _ := args["token"].(string)

	result, err := s.executeInstanceInfo(ctx, instance, token)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleAccountStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	instance, ok := args["instance"].(string)
	if !ok || instance == "" {
		return mcp.NewToolResultError("instance parameter is required"), nil
	}

	token, _ := args["token"].(string)

	pageLimit := api.DefaultPageLimit
	if l, ok := args["page_limit"].(float64); ok {
		pageLimit = int(l)
	}

	result, err := s.executeAccountStats(ctx, instance, token, pageLimit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleTimelineStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	instance, ok := args["instance"].(string)
	if !ok || instance == "" {
		return mcp.NewToolResultError("instance parameter is required"), nil
	}

	token, _ := args["token"].(string)

	limit := 100
	if l, ok := args["limit"].(float64); ok {
		limit = int(l)
	}

	result, err := s.executeTimelineStats(ctx, instance, token, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

// Execution functions (implementations)

// newClient builds an API client for one tool call.
func (s *Server) newClient(instance, token string, offline bool) *api.Client {
	if token == "" {
		token = s.defaultToken
	}
	return api.NewClient(instance, api.Options{
		Token:     token,
		Timeout:   s.apiTimeout,
		Logger:    s.log,
		Snapshots: s.snapshots,
		Offline:   offline,
	})
}

func (s *Server) executeReport(ctx context.Context, instance, token string, offline bool) (string, error) {
	client := s.newClient(instance, token, offline)
	gatherer := report.NewGatherer(client, s.log)

	result := gatherer.Gather(ctx)
	return toJSON(result)
}

func (s *Server) executeInstanceInfo(ctx context.Context, instance, token string) (string, error) {
	client := s.newClient(instance, token, false)

	info, err := client.Instance(ctx)
	if err != nil {
		return "", fmt.Errorf("instance information unavailable: %w", err)
	}

	return toJSON(info)
}

func (s *Server) executeAccountStats(ctx context.Context, instance, token string, pageLimit int) (string, error) {
	client := s.newClient(instance, token, false)

	accounts, err := client.FetchAllAccounts(ctx, pageLimit)
	if err != nil {
		return "", fmt.Errorf("account roster unavailable: %w", err)
	}

	accountStats := stats.AnalyzeAccounts(accounts, time.Now())
	if accountStats == nil {
		return "", fmt.Errorf("no account data available: an admin token is required")
	}

	return toJSON(accountStats)
}

func (s *Server) executeTimelineStats(ctx context.Context, instance, token string, limit int) (string, error) {
	client := s.newClient(instance, token, false)

	statuses, err := client.LocalTimeline(ctx, limit)
	if err != nil {
		return "", fmt.Errorf("local timeline unavailable: %w", err)
	}

	timelineStats := stats.AnalyzeTimeline(statuses)
	if timelineStats == nil {
		return "", fmt.Errorf("local timeline is empty (auth token may be required)")
	}

	return toJSON(timelineStats)
}

// Helper functions

func toJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
