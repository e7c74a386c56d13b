/*
Copyright © 2025 TaskScout Authors
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/taskscout/taskscout/internal/tracker"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve recommendations over the Model Context Protocol",
	Long: `Start a Model Context Protocol (MCP) server so AI tools like Claude Code,
Cursor, and other assistants can ask TaskScout what to work on next.

Exposed tools:
- recommend-tasks: rank open work items and return the top candidates
- breakdown-task: decompose a work item into dependency-ordered subtasks
- team-workload: inspect the per-member workload model

Register the binary with your client, for example:
  taskscout mcp

Protocol traffic flows over stdio; the command blocks until the client
disconnects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServer(ctx context.Context) error {
	trk, cleanup, err := GetTracker()
	if err != nil {
		return fmt.Errorf("failed to open tracker backend: %w", err)
	}
	defer cleanup()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "taskscout",
		Version: GetVersion(),
	}, &mcp.ServerOptions{})

	registerMCPTools(server, trk)
	registerMCPResources(server, trk)

	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func registerMCPTools(server *mcp.Server, trk tracker.Tracker) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "recommend-tasks",
		Description: "Rank open work items by priority, urgency, team availability, skill match, and readiness. Returns the top candidates with per-component scores and plain-language reasoning.",
	}, recommendTasksHandler(trk))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "breakdown-task",
		Description: "Decompose a complex work item into dependency-ordered subtasks with execution phases, a critical path, and a timeline estimate. Set apply to create a tracker item per subtask, gated by the loaded policies.",
	}, breakdownTaskHandler(trk))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "team-workload",
		Description: "Report the per-member workload model: current load, capacity, availability score, skill areas, and recent velocity.",
	}, teamWorkloadHandler(trk))
}

func registerMCPResources(server *mcp.Server, trk tracker.Tracker) {
	// Items resource - the raw snapshot the tools rank
	server.AddResource(&mcp.Resource{
		URI:         "taskscout://items",
		Name:        "items",
		Description: "The current work item snapshot in JSON format",
		MIMEType:    "application/json",
	}, itemsResourceHandler(trk))

	// Config resource - effective TaskScout configuration
	server.AddResource(&mcp.Resource{
		URI:         "taskscout://config",
		Name:        "config",
		Description: "TaskScout configuration settings",
		MIMEType:    "application/json",
	}, configResourceHandler())
}

// itemsResourceHandler serves the work item snapshot as JSON.
func itemsResourceHandler(trk tracker.Tracker) mcp.ResourceHandler {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.ReadResourceParams) (*mcp.ReadResourceResult, error) {
		items, err := trk.FetchItems(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch work items: %w", err)
		}

		jsonData, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal items to JSON: %w", err)
		}

		mcpLog("served items resource with %d item(s)", len(items))

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      params.URI,
					MIMEType: "application/json",
					Text:     string(jsonData),
				},
			},
		}, nil
	}
}

// configResourceHandler serves the effective configuration.
func configResourceHandler() mcp.ResourceHandler {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.ReadResourceParams) (*mcp.ReadResourceResult, error) {
		jsonData, err := json.MarshalIndent(GetConfig(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config to JSON: %w", err)
		}

		mcpLog("served config resource")

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      params.URI,
					MIMEType: "application/json",
					Text:     string(jsonData),
				},
			},
		}, nil
	}
}

// mcpLog writes server-side diagnostics to stderr when verbose is on.
// Stdout carries the protocol stream, so nothing may print there.
func mcpLog(format string, args ...any) {
	if viper.GetBool("verbose") {
		log.Printf("mcp: "+format, args...)
	}
}
