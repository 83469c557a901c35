// Package cli implements the remedy command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "remedy",
	Version: Version,
	Short:   "An incident resolution workflow orchestrator",
	Long: `Remedy walks an incident report through the resolution workflow:
parse the report, match similar historical cases, retrieve knowledge-base
material, generate a remediation plan, and execute it step by step with
human approval gates on high-risk actions.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}
