// Package cmd wires the command-line interface. The default command serves
// MCP over stdio; stdout belongs to the protocol, so all human-facing output
// goes to stderr.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootFlag string

var rootCmd = &cobra.Command{
	Use:   "devkit-mcp",
	Short: "MCP server exposing sandboxed developer tools",
	Long: `devkit-mcp serves a set of developer tools (file access, code search,
git inspection, documentation lookup, command execution) over the Model
Context Protocol on stdio.

All file operations are confined to a workspace root; commands run without a
shell against an allowlist. The root comes from --root, the DEVKIT_ROOT
environment variable, or the current working directory, in that order.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "workspace root directory (overrides DEVKIT_ROOT)")
}
