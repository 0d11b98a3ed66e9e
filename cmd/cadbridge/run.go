package main

import (
	"github.com/aretw0/cadbridge/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <script.yaml>",
	Short: "Run a modelling script against the host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sets, _ := cmd.Flags().GetStringArray("set")
		params, err := parseParams(sets)
		if err != nil {
			return err
		}
		return cli.RunScript(cmd.Context(), options(cmd), args[0], params)
	},
}

var planCmd = &cobra.Command{
	Use:   "plan <script.yaml>",
	Short: "Print the host calls a script would make, using the simulator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sets, _ := cmd.Flags().GetStringArray("set")
		params, err := parseParams(sets)
		if err != nil {
			return err
		}
		return cli.Plan(cmd.Context(), options(cmd), args[0], params)
	},
}

func init() {
	for _, c := range []*cobra.Command{runCmd, planCmd} {
		c.Flags().StringArray("set", nil, "Override a script parameter (name=value, repeatable)")
		rootCmd.AddCommand(c)
	}
}
