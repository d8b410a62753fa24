package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/textguard/internal/config"
	"github.com/harrison/textguard/internal/display"
)

// NewKeywordsCommand creates the 'textguard keywords' parent command
func NewKeywordsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Show or edit the suspicious keyword list",
		Long: `Show or edit the comma-separated keyword list used by scan.

Keywords are matched as case-insensitive substrings. Entries are trimmed
and empty entries are dropped; casing and duplicates are kept as entered.`,
	}

	cmd.AddCommand(newKeywordsShowCommand())
	cmd.AddCommand(newKeywordsSetCommand())
	cmd.AddCommand(newKeywordsResetCommand())

	return cmd
}

func newKeywordsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the configured keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			keywords := cfg.KeywordList()
			if len(keywords) == 0 {
				fmt.Fprintln(out, "No keywords configured.")
				return nil
			}
			fmt.Fprintln(out, strings.Join(keywords, ", "))
			return nil
		},
	}
}

func newKeywordsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <csv>",
		Short: "Replace the keyword list",
		Long: `Replace the keyword list with a comma-separated string.

Example:
  textguard keywords set "exec, eval, socket"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateKeywords(cmd, func(cfg *config.Config) {
				cfg.Keywords = strings.Join(config.ParseKeywords(args[0]), ",")
			}, "keywords updated.")
		},
	}
}

func newKeywordsResetCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default keyword list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if !yes && display.IsTerminal(in) {
				fmt.Fprintln(cmd.OutOrStdout(), "This replaces your keyword list with the defaults.")
				if !confirmAction(in, cmd.OutOrStdout()) {
					fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled.")
					return nil
				}
			}
			return updateKeywords(cmd, (*config.Config).ResetKeywords, "keywords reset to defaults.")
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// updateKeywords loads the config file (without environment overrides),
// applies mutate and saves it back.
func updateKeywords(cmd *cobra.Command, mutate func(*config.Config), done string) error {
	path, err := configPath(cmd)
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	mutate(cfg)

	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), done)
	return nil
}

// confirmAction prompts for a yes/no answer on in
func confirmAction(in io.Reader, out io.Writer) bool {
	scanner := bufio.NewScanner(in)

	fmt.Fprint(out, "Continue? [y/N]: ")
	if !scanner.Scan() {
		return false
	}

	response := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return response == "y" || response == "yes"
}
