package cmd

import (
	"github.com/petrabarus/actions-committer-coverage-stats/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [repo-path]",
	Short: "Start the ccstats MCP server",
	Long:  `Launch an MCP server on stdio that lets AI agents compute committer coverage via standard tools.`,
	Args:  cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Stdout carries the protocol, so setup only logs to stderr.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
