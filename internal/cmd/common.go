package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/textguard/internal/config"
	"github.com/harrison/textguard/internal/filelock"
	"github.com/harrison/textguard/internal/workspace"
)

// configPath returns --config or $TEXTGUARD_HOME/config.yaml
func configPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	return config.GetConfigPath()
}

// loadConfig loads the config file, then the environment, then --workspace.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := configPath(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	cfg.ApplyEnv()

	if cmd.Flags().Changed("workspace") {
		ws, _ := cmd.Flags().GetString("workspace")
		cfg.MergeWithFlags(nil, &ws, nil, nil)
	}
	return cfg, nil
}

// openWorkspace opens the configured workspace database.
func openWorkspace(cfg *config.Config) (*workspace.Store, error) {
	path, err := cfg.ResolveWorkspacePath()
	if err != nil {
		return nil, err
	}
	store, err := workspace.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace %s: %w", path, err)
	}
	return store, nil
}

// lockWorkspace takes the run lock for a workspace database.
// In-memory databases are private to the process and need none.
func lockWorkspace(path string) (func(), error) {
	if path == ":memory:" {
		return func() {}, nil
	}

	lock, err := filelock.TryAcquire(path)
	if errors.Is(err, filelock.ErrLocked) {
		return nil, fmt.Errorf("workspace is in use by another textguard run: %w", err)
	}
	if err != nil {
		return nil, err
	}
	return func() { lock.Unlock() }, nil
}
