package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// DefaultBaseURL is where the backend listens unless configured otherwise
	DefaultBaseURL = "http://localhost:8000"
	// DefaultListenAddr is the address the bundled backend binds to
	DefaultListenAddr = "localhost:8000"

	// EnvBaseURL overrides the configured base URL
	EnvBaseURL = "TASKDECK_BASE_URL"
	// EnvLogLevel overrides the configured log level
	EnvLogLevel = "TASKDECK_LOG_LEVEL"

	localConfigFile = ".taskdeck.jsonc"
)

var (
	// ConfigDir is the global configuration directory (~/.taskdeck)
	ConfigDir string

	// ConfigFile is the global configuration file
	ConfigFile string

	// DatabasePath is the SQLite database used by the bundled backend
	DatabasePath string

	// SessionFile stores the shell's navigation history
	SessionFile string

	// LogFile receives the shell's logs
	LogFile string

	// AnalyticsPath is the SQLite database recording gateway calls
	AnalyticsPath string

	// BookmarksPath is the SQLite database of saved queries
	BookmarksPath string

	// KeybindsPath holds the shell's key overrides
	KeybindsPath string
)

// Config holds the settings shared by the CLI, the shell and the backend
type Config struct {
	// BaseURL of the backend. Fixed once a client has been built from it.
	BaseURL    string `json:"baseUrl" yaml:"baseUrl"`
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`
	Output     string `json:"output,omitempty" yaml:"output,omitempty"` // json or yaml
	ListenAddr string `json:"listenAddr,omitempty" yaml:"listenAddr,omitempty"`
	Database   string `json:"database,omitempty" yaml:"database,omitempty"`
	LogLevel   string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	LogDev     bool   `json:"logDev,omitempty" yaml:"logDev,omitempty"`

	// NoAnalytics stops recording gateway calls
	NoAnalytics bool `json:"noAnalytics,omitempty" yaml:"noAnalytics,omitempty"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		Collection: "tasks",
		Output:     "json",
		ListenAddr: DefaultListenAddr,
		Database:   DatabasePath,
		LogLevel:   "info",
	}
}

// Initialize sets up the configuration directory and files
// It creates ~/.taskdeck/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitializeAt(filepath.Join(homeDir, ".taskdeck"))
}

// InitializeAt is Initialize rooted at dir
func InitializeAt(dir string) error {
	ConfigDir = dir
	ConfigFile = filepath.Join(ConfigDir, "config.jsonc")
	DatabasePath = filepath.Join(ConfigDir, "taskdeck.db")
	SessionFile = filepath.Join(ConfigDir, ".session.json")
	LogFile = filepath.Join(ConfigDir, "taskdeck.log")
	AnalyticsPath = filepath.Join(ConfigDir, "analytics.db")
	BookmarksPath = filepath.Join(ConfigDir, "bookmarks.db")
	KeybindsPath = filepath.Join(ConfigDir, "keybinds.json")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	// Create a commented default config file if it doesn't exist
	if _, err := os.Stat(ConfigFile); os.IsNotExist(err) {
		defaultConfig := []byte(`{
  // Backend the CLI and the shell talk to
  "baseUrl": "` + DefaultBaseURL + `",
  // Output format for CLI results (json or yaml)
  "output": "json",
  // Address used by 'taskdeck serve'
  "listenAddr": "` + DefaultListenAddr + `",
  "logLevel": "info"
}
`)
		if err := os.WriteFile(ConfigFile, defaultConfig, FilePermissions); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	return nil
}

// GetConfigFilePath returns the config file path (local or global)
func GetConfigFilePath() string {
	if _, err := os.Stat(localConfigFile); err == nil {
		return localConfigFile
	}
	return ConfigFile
}

// Load reads a config file on top of the defaults. JSON files may contain comments.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config file format: %s (use .jsonc, .json, .yaml or .yml)", ext)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from environment variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.BaseURL = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
}

// Validate checks the settings that would otherwise fail late
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base URL %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid base URL %q: missing host", c.BaseURL)
	}
	switch c.Output {
	case "", "json", "yaml", "body":
	default:
		return fmt.Errorf("unsupported output format %q (use json, yaml or body)", c.Output)
	}
	return nil
}

// Save writes cfg to path in the format given by its extension
func Save(cfg Config, path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
