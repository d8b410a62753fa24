package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for textguard
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "textguard",
		Short: "Safely extract and scan text blocks from .blend files",
		Long: `textguard appends the text datablocks of every .blend file in a folder
to a local workspace without loading or running anything else in the files.

Each extracted block is renamed "<file>_<block>" and scanned for suspicious
keywords. Blocks that match, and files that could not be loaded, are listed
in the 'BlendTextGuard_FlagReport' report.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: $TEXTGUARD_HOME/config.yaml)")
	cmd.PersistentFlags().String("workspace", "", "Path to workspace database (default: $TEXTGUARD_HOME/workspace.db)")

	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewKeywordsCommand())
	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewShowCommand())
	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
