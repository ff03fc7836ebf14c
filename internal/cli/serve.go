package cli

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/harvx/rewrite/internal/mcpserver"
)

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Run the apply_plan MCP tool server over stdio",
	Long:  "serve-mcp starts an MCP server exposing apply_plan, letting an agent submit plan documents and read back structured reports without shelling out to rwx.",
	RunE:  runServeMCP,
}

func init() {
	rootCmd.AddCommand(serveMCPCmd)
}

func runServeMCP(cmd *cobra.Command, args []string) error {
	server := mcpserver.NewServer()
	return server.Run(cmd.Context(), &mcp.StdioTransport{})
}
