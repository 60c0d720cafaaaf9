package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/dpesim/internal/domain"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dpesim %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.Main.Version
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:   "dpesim",
	Short: "DPE renovation scenario configurator",
	Long: `Configure renovation scenarios for a DPE (French energy performance
diagnosis): pick the improvement groups and levels of every building element,
count the resulting combinations, submit them for generation and explore the
generated scenarios.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config.yaml (default: the per-user config directory)")
	pf.StringP("format", "f", "table", "Output format (table, csv, json, yaml)")
	pf.Bool("debug", false, "Enable debug logging")
	pf.String("snapshot", "", "Work offline on a snapshot file (YAML or JSON) instead of the backend")

	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(stepCmd)
	rootCmd.AddCommand(settingCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(entryCmd)
	rootCmd.AddCommand(scopeCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(versionCmd())
}

// keyArgs reads an (entry, group) pair from two positional arguments.
func keyArgs(args []string) domain.Key {
	return domain.Key{EntryID: args[0], GroupID: args[1]}
}

func parseLevel(s string) (domain.Level, error) {
	n, err := strconv.Atoi(s)
	if err != nil || !domain.Level(n).Valid() {
		return 0, &domain.LevelError{Input: s}
	}
	return domain.Level(n), nil
}

func parseOrdinal(s string) (int, error) {
	k, err := strconv.Atoi(s)
	if err != nil || k < 0 {
		return 0, fmt.Errorf("invalid scenario ordinal %q", s)
	}
	return k, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
