package main

import (
	"github.com/aretw0/cadbridge"
	"github.com/aretw0/cadbridge/internal/cli"
	"github.com/aretw0/cadbridge/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the host over an HTTP API",
	Long: `Starts an HTTP server exposing the operation catalogue, the script runner
and Prometheus metrics. The listen address defaults to http.addr from the
configuration.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(cmd.OutOrStdout(), "v"+cadbridge.Version)
		}
		return cli.Serve(cmd.Context(), options(cmd), addr)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts cadbridge as an MCP server so agents can call modelling operations as tools.

Supported transports:
- stdio (default): standard input/output, for local process integration.
- sse: Server-Sent Events over HTTP when --sse is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sse, _ := cmd.Flags().GetString("sse")
		return cli.ServeMCP(cmd.Context(), options(cmd), sse)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides http.addr)")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
	mcpCmd.Flags().String("sse", "", "Serve over SSE on this address instead of stdio")
	rootCmd.AddCommand(serveCmd, mcpCmd)
}
