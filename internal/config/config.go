package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/textguard/internal/filelock"
)

// DefaultKeywords is the built-in suspicious keyword list: process spawning,
// network access, dynamic evaluation, reflection and encoding primitives.
const DefaultKeywords = "subprocess,os.system,urllib,requests,eval,exec,input,__import__,open,compile,bpy.app.handlers," +
	"socket,http.client,ftplib,base64,64,hex,unicode_escape,bytes.fromhex,codecs,marshal,zlib,bz2," +
	"gzip,rot13,re,inspect,ctypes,getattr,setattr,globals,locals,__dict__"

// DefaultExtension is the container file suffix scanned in a folder
const DefaultExtension = ".blend"

// Config represents textguard configuration options
type Config struct {
	// Keywords is the comma-separated list of suspicious substrings
	Keywords string `yaml:"keywords"`

	// Extension is the container file suffix (matched case-insensitively)
	Extension string `yaml:"extension"`

	// Workspace is the path of the workspace database (empty = <home>/workspace.db)
	Workspace string `yaml:"workspace"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs will be written (empty = <home>/logs)
	LogDir string `yaml:"log_dir"`

	// MaxFileSize caps the decompressed size of one container in bytes (0 = reader default)
	MaxFileSize int64 `yaml:"max_file_size"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Keywords:  DefaultKeywords,
		Extension: DefaultExtension,
		LogLevel:  "info",
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Decode into a map first so an explicitly empty keyword list is kept
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if _, exists := rawMap["keywords"]; exists {
		cfg.Keywords = fileCfg.Keywords
	}
	if fileCfg.Extension != "" {
		cfg.Extension = fileCfg.Extension
	}
	if fileCfg.Workspace != "" {
		cfg.Workspace = fileCfg.Workspace
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogDir != "" {
		cfg.LogDir = fileCfg.LogDir
	}
	if fileCfg.MaxFileSize != 0 {
		cfg.MaxFileSize = fileCfg.MaxFileSize
	}

	return cfg, nil
}

// Save writes the configuration as YAML, holding a lock on the file while writing
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := filelock.LockAndWrite(path, data); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// KeywordList returns the parsed keyword list
func (c *Config) KeywordList() []string {
	return ParseKeywords(c.Keywords)
}

// ResetKeywords restores the built-in keyword list, discarding user edits
func (c *Config) ResetKeywords() {
	c.Keywords = DefaultKeywords
}

// ParseKeywords splits a comma-separated keyword string.
// Entries are trimmed and empty entries dropped; casing and duplicates are kept.
func ParseKeywords(s string) []string {
	var keywords []string
	for _, kw := range strings.Split(s, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// ApplyEnv applies TEXTGUARD_KEYWORDS when it is set
func (c *Config) ApplyEnv() {
	if kw, ok := os.LookupEnv(KeywordsEnv); ok {
		c.Keywords = kw
	}
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(keywords *string, workspace *string, logLevel *string, logDir *string) {
	if keywords != nil {
		c.Keywords = *keywords
	}
	if workspace != nil {
		c.Workspace = *workspace
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if len(c.Extension) < 2 || !strings.HasPrefix(c.Extension, ".") {
		return fmt.Errorf("extension must start with a dot, got %q", c.Extension)
	}

	if c.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must be >= 0, got %d", c.MaxFileSize)
	}

	return nil
}
