package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/cadbridge/internal/cli"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

var rootCmd = &cobra.Command{
	Use:   "cadbridge",
	Short: "cadbridge drives a desktop CAD application from scripts and agents",
	Long: `cadbridge connects to a running CAD application and exposes its sketch,
feature and document operations as YAML scripts, an HTTP API and MCP tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Configuration file (default cadbridge.yaml when present)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log every host call to stderr")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Use the in-memory simulator instead of the real host")
	rootCmd.PersistentFlags().String("redis", "", "Redis address for the cross-process host lock")
}

func options(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	debug, _ := flags.GetBool("debug")
	dryRun, _ := flags.GetBool("dry-run")
	redisAddr, _ := flags.GetString("redis")
	return cli.Options{
		ConfigPath: configPath,
		Debug:      debug,
		DryRun:     dryRun,
		RedisAddr:  redisAddr,
		Out:        cmd.OutOrStdout(),
	}
}

// parseParams parses repeated name=value flags.
func parseParams(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("--set %q: want name=value", p)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("--set %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// parsePoints parses repeated x,y flags.
func parsePoints(flag string, values []string) ([]r2.Vec, error) {
	out := make([]r2.Vec, 0, len(values))
	for _, s := range values {
		xs, ys, ok := strings.Cut(s, ",")
		if !ok {
			return nil, fmt.Errorf("--%s %q: want x,y", flag, s)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		if err != nil {
			return nil, fmt.Errorf("--%s %q: %w", flag, s, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if err != nil {
			return nil, fmt.Errorf("--%s %q: %w", flag, s, err)
		}
		out = append(out, r2.Vec{X: x, Y: y})
	}
	return out, nil
}
