package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// HomeEnv overrides the textguard home directory
	HomeEnv = "TEXTGUARD_HOME"

	// KeywordsEnv overrides the configured keyword list
	KeywordsEnv = "TEXTGUARD_KEYWORDS"

	// ConfigFileName is the config file inside the home directory
	ConfigFileName = "config.yaml"
)

// GetHome returns the textguard home directory
// Priority order:
//  1. TEXTGUARD_HOME environment variable (if set)
//  2. ~/.textguard
//
// The directory is created if it doesn't exist
func GetHome() (string, error) {
	home := os.Getenv(HomeEnv)
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get user home directory: %w", err)
		}
		home = filepath.Join(userHome, ".textguard")
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create textguard home directory: %w", err)
	}
	return home, nil
}

// GetConfigPath returns $TEXTGUARD_HOME/config.yaml
func GetConfigPath() (string, error) {
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

// ResolveWorkspacePath returns the configured workspace path or $TEXTGUARD_HOME/workspace.db
func (c *Config) ResolveWorkspacePath() (string, error) {
	if c.Workspace != "" {
		return c.Workspace, nil
	}
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "workspace.db"), nil
}

// ResolveLogDir returns the configured log directory or $TEXTGUARD_HOME/logs
func (c *Config) ResolveLogDir() (string, error) {
	if c.LogDir != "" {
		return c.LogDir, nil
	}
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "logs"), nil
}
