package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/config"
	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/mcp"
)

var (
	callList bool
	callPipe bool
)

var callCmd = &cobra.Command{
	Use:   "call [tool] [json-args]",
	Short: "Invoke analysis tools with structured JSON input/output",
	Long: `Call any mastostat tool with structured JSON input/output.

Tools accept JSON arguments and return JSON results. This is the same tool
surface the MCP server exposes, without the server.

Modes:
  mastostat call --list                        List all tools and parameters
  mastostat call <tool> '{"key":"value"}'      Call a tool with JSON args
  mastostat call --pipe                        Read JSON lines from stdin

Tool names accept shorthand: "report" is equivalent to "mastodon_report".

Examples:
  mastostat call --list
  mastostat call report '{"instance":"https://mastodon.social"}'
  mastostat call instance_info '{"instance":"https://mastodon.social"}'
  mastostat call timeline_stats '{"instance":"https://example.social","limit":40}'
  echo '{"tool":"mastodon_report","args":{"instance":"https://example.social"}}' | mastostat call --pipe`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().BoolVar(&callList, "list", false, "List all available tools and their parameters")
	callCmd.Flags().BoolVar(&callPipe, "pipe", false, "Read JSON lines from stdin (pipe mode)")
}

func runCall(cmd *cobra.Command, args []string) error {
	if callList {
		return runCallList()
	}
	if callPipe {
		return runCallPipe()
	}
	if len(args) == 0 {
		return fmt.Errorf("tool name required (run 'mastostat call --list' to see available tools)")
	}
	return runCallSingle(args)
}

// newCallServer builds the tool dispatcher used by the call command.
func newCallServer() (*mcp.Server, func(), error) {
	log := newLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	snapshots := openSnapshotCache(cfg, log)
	closer := func() {
		if snapshots != nil {
			snapshots.Close()
		}
	}

	srv, err := mcp.New(mcp.Config{
		Tools:     mcp.AllTools,
		Token:     cfg.API.Token,
		Snapshots: snapshotStore(snapshots),
		Logger:    log,
	})
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("create server: %w", err)
	}

	return srv, closer, nil
}

func runCallList() error {
	srv, closer, err := newCallServer()
	if err != nil {
		return err
	}
	defer closer()

	schemas := srv.GetToolSchemas()

	switch outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(schemas)
	default: // yaml
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(schemas)
	}
}

func runCallSingle(args []string) error {
	toolName := normalizeToolName(args[0])

	// Parse JSON args
	var toolArgs map[string]interface{}
	if len(args) >= 2 {
		if err := json.Unmarshal([]byte(args[1]), &toolArgs); err != nil {
			return fmt.Errorf("invalid JSON args: %w", err)
		}
	} else {
		toolArgs = make(map[string]interface{})
	}

	srv, closer, err := newCallServer()
	if err != nil {
		return err
	}
	defer closer()

	result, err := srv.CallTool(context.Background(), toolName, toolArgs)
	if err != nil {
		return err
	}

	fmt.Println(result)
	return nil
}

// pipeRequest is the JSON format for pipe mode input.
type pipeRequest struct {
	Tool string                 `json:"tool"`
	Args map[string]interface{} `json:"args"`
}

// pipeResponse is the JSON format for pipe mode output.
type pipeResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func runCallPipe() error {
	srv, closer, err := newCallServer()
	if err != nil {
		return err
	}
	defer closer()

	enc := json.NewEncoder(os.Stdout)
	scanner := bufio.NewScanner(os.Stdin)
	// Allow larger lines (1MB)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req pipeRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			enc.Encode(pipeResponse{Error: fmt.Sprintf("invalid JSON: %v", err)})
			continue
		}

		toolName := normalizeToolName(req.Tool)
		if req.Args == nil {
			req.Args = make(map[string]interface{})
		}

		result, err := srv.CallTool(context.Background(), toolName, req.Args)
		if err != nil {
			enc.Encode(pipeResponse{Error: err.Error()})
			continue
		}

		// Tool results are already JSON; wrap anything else as a string.
		var raw json.RawMessage
		if err := json.Unmarshal([]byte(result), &raw); err != nil {
			b, _ := json.Marshal(result)
			raw = b
		}
		enc.Encode(pipeResponse{Result: raw})
	}

	return scanner.Err()
}

// normalizeToolName converts shorthand names to full tool names.
// "report" -> "mastodon_report", "mastodon_report" -> "mastodon_report"
func normalizeToolName(name string) string {
	if !strings.HasPrefix(name, "mastodon_") {
		return "mastodon_" + name
	}
	return name
}
