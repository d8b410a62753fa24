package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/textguard/internal/workspace"
)

// NewShowCommand creates the 'textguard show' command
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a text block from the workspace",
		Long: `Print the content of a workspace text block.

Examples:
  textguard show demo_Text
  textguard show BlendTextGuard_FlagReport`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openWorkspace(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := store.Get(args[0])
	if errors.Is(err, workspace.ErrNotFound) {
		return fmt.Errorf("no text block named %q in the workspace", args[0])
	}
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), res.Content)
	return nil
}
