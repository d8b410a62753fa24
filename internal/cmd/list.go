package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewListCommand creates the 'textguard list' command
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List text blocks in the workspace",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openWorkspace(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	names, err := store.Names()
	if err != nil {
		return fmt.Errorf("failed to list workspace: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, "Workspace is empty.")
		return nil
	}

	width := 0
	for _, name := range names {
		if len(name) > width {
			width = len(name)
		}
	}

	for _, name := range names {
		res, err := store.Get(name)
		if err != nil {
			return err
		}
		source := "-"
		if res.Source != "" {
			source = filepath.Base(res.Source)
		}
		fmt.Fprintf(out, "%-*s  %s\n", width, name, source)
	}
	return nil
}
