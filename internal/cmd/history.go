package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the 'textguard history' command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previous scan runs",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}

	cmd.Flags().Int("limit", 10, "Number of runs to show (0 = all)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openWorkspace(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	version, err := store.GetLatestVersion()
	if err != nil {
		return fmt.Errorf("failed to read workspace schema: %w", err)
	}
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Workspace %s (schema v%d)\n", store.Path(), version)
	if len(runs) == 0 {
		fmt.Fprintln(out, "No scans recorded.")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(out, "%s  %s  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.ID[:8], run.Folder)
		fmt.Fprintf(out, "    appended %d from %d file(s), %d flagged, %d skipped\n",
			run.TotalCount, run.ProcessedFiles, len(run.Flagged), len(run.Skipped))
		for _, f := range run.Flagged {
			fmt.Fprintf(out, "    ! %s / %s: %s\n", f.Container, f.Resource, strings.Join(f.Keywords, ", "))
		}
		for _, s := range run.Skipped {
			fmt.Fprintf(out, "    x %s: %s\n", s.FileName, s.Error)
		}
	}
	return nil
}

