package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/textguard/internal/filelock"
)

// NewExportCommand creates the 'textguard export' command
func NewExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every workspace text block to a directory",
		Long: `Write every workspace text block to <dir>, one file per block,
named after the block. Existing files with the same name are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	dir := args[0]

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

	for _, name := range names {
		res, err := store.Get(name)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, exportFileName(name))
		if err := filelock.AtomicWrite(path, []byte(res.Content)); err != nil {
			return fmt.Errorf("failed to export %q: %w", name, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d text block(s) to %s\n", len(names), dir)
	return nil
}

// exportFileName maps a block name to a file name that stays inside the export directory.
func exportFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
	if name == "." || name == ".." {
		name = "_" + name
	}
	return name
}
