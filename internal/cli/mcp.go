package cli

import (
	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/rubik_server/internal/mcptools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the cube tools over MCP (stdio)",
	Long: `Run an MCP server on stdin and stdout.

The tools mirror the HTTP API: create_session, list_sessions, cube_state,
apply_move, apply_moves, solve, reset and list_algorithms. Logs go to stderr.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	a.logger.Info("serving MCP on stdio")
	return mcptools.New(a.sessions, version).ServeStdio()
}
