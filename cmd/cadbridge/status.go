package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/cadbridge"
	"github.com/aretw0/cadbridge/internal/cli"
	"github.com/aretw0/cadbridge/pkg/script"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Connect to the host and report the active document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Status(cmd.Context(), options(cmd))
	},
}

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "List the operations available to scripts, HTTP and MCP clients",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")
		return cli.PrintCatalogue(cmd.OutOrStdout(), script.Operations(nil), raw)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cadbridge",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cadbridge version %s\n", strings.TrimSpace(cadbridge.Version))
	},
}

func init() {
	opsCmd.Flags().Bool("raw", false, "Print markdown without terminal styling")
	rootCmd.AddCommand(statusCmd, opsCmd, versionCmd)
}
