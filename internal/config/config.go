package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/localrivet/configurator"
)

// Global configuration instance
var (
	// Global is the global configuration instance
	Global *Config
	// initOnce ensures initialization happens only once
	initOnce sync.Once
)

// InitGlobal initializes the global configuration
func InitGlobal(configPath string) (*Config, error) {
	var err error
	initOnce.Do(func() {
		Global, err = LoadConfigWithPath(configPath)
	})
	return Global, err
}

// Config represents the DavinciMCP configuration
type Config struct {
	// Resolve contains settings for the DaVinci Resolve binding.
	Resolve struct {
		// BridgeScript is the path to the scripting bridge the binding
		// spawns to reach the Resolve application.
		BridgeScript string `json:"bridge_script" env:"RESOLVE_BRIDGE_SCRIPT"`
	} `json:"resolve"`

	// Gemini contains settings for the AI text completion adapter.
	Gemini struct {
		// APIKey is the Gemini API key. Absent key leaves the adapter
		// uninitialized; calls then return a fixed error string.
		APIKey string `json:"api_key" env:"GEMINI_API_KEY"`

		// Model is the Gemini model identifier.
		Model string `json:"model" env:"GEMINI_MODEL"`

		// Temperature is the process-wide default sampling temperature.
		Temperature float64 `json:"temperature" env:"GEMINI_TEMPERATURE"`

		// TopP is the default nucleus-sampling threshold.
		TopP float64 `json:"top_p" env:"GEMINI_TOP_P"`

		// TopK is the default top-k sampling cutoff.
		TopK float64 `json:"top_k" env:"GEMINI_TOP_K"`

		// MaxOutputTokens is the default response length cap.
		MaxOutputTokens int `json:"max_output_tokens" env:"GEMINI_MAX_TOKENS"`
	} `json:"gemini"`

	// Anthropic contains settings for the hosted model used by the MCP
	// protocol client.
	Anthropic struct {
		// APIKey is the Anthropic API key. Its absence is a hard
		// precondition failure for protocol-client mode.
		APIKey string `json:"api_key" env:"ANTHROPIC_API_KEY"`

		// Model is the Claude model identifier.
		Model string `json:"model" env:"ANTHROPIC_MODEL"`
	} `json:"anthropic"`

	// MCP contains settings for the tool-server gateway.
	MCP struct {
		// Enabled gates both the server-process manager and the
		// protocol client.
		Enabled bool `json:"enabled" env:"MCP_ENABLED"`

		// ServerScript is the path to the external tool-server script.
		ServerScript string `json:"server_script" env:"MCP_SERVER_SCRIPT"`

		// Capabilities is the declared capability list, comma-separated.
		Capabilities string `json:"capabilities" env:"MCP_SERVER_CAPABILITIES"`
	} `json:"mcp"`

	// FeedbackEnabled toggles attaching feedback strings to command results.
	FeedbackEnabled bool `json:"feedback_enabled" env:"FEEDBACK_ENABLED"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level to display ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL"`

		// Format is the log format to use ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`
	} `json:"logging"`

	// Internal state (not saved to config file)
	configPath     string       `json:"-"`
	mutex          sync.RWMutex `json:"-"`
	lastModifiedAt time.Time    `json:"-"`
}

// Default configuration values
const (
	DefaultConfigFilename  = ".davincimcpconfig"
	DefaultGeminiModel     = "gemini-2.5-flash"
	DefaultAnthropicModel  = "claude-sonnet-4-5-20250929"
	DefaultTemperature     = 0.7
	DefaultTopP            = 0.9
	DefaultTopK            = 40
	DefaultMaxOutputTokens = 1024
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"

	// EnvPrefix is the prefix for namespaced environment overrides.
	EnvPrefix = "DAVINCIMCP"
)

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	config := &Config{}
	config.Gemini.Model = DefaultGeminiModel
	config.Gemini.Temperature = DefaultTemperature
	config.Gemini.TopP = DefaultTopP
	config.Gemini.TopK = DefaultTopK
	config.Gemini.MaxOutputTokens = DefaultMaxOutputTokens
	config.Anthropic.Model = DefaultAnthropicModel
	config.FeedbackEnabled = true
	config.Logging.Level = DefaultLogLevel
	config.Logging.Format = DefaultLogFormat
	return config
}

// LoadConfig loads the configuration from the default path
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath(DefaultConfigFilename)
}

// LoadConfigWithPath loads the configuration from a specific path
func LoadConfigWithPath(configPath string) (*Config, error) {
	// Create a default logger for configuration loading
	stdLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Create default configuration
	cfg := NewConfig()

	// Try to find config file if path is default
	if configPath == DefaultConfigFilename {
		foundPath, err := configurator.FindConfigFile(configPath)
		if err == nil {
			configPath = foundPath
			stdLogger.Debug("Found config file at " + foundPath)
		}
	}

	// Check if the file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// File doesn't exist, return default config with env overrides
		stdLogger.Info("Config file not found, using default configuration", "path", configPath)
		applyEnvOverrides(cfg)
		cfg.configPath = configPath
		cfg.lastModifiedAt = time.Now()
		return cfg, nil
	}

	stdLogger.Info("Loading configuration", "path", configPath)

	// Create configurator instance
	config := configurator.New(stdLogger).
		WithProvider(configurator.NewDefaultProvider()).
		WithProvider(configurator.NewFileProvider(configPath)).
		WithProvider(configurator.NewEnvProvider(EnvPrefix)).
		WithValidator(configurator.NewDefaultValidator())

	// Load configuration
	ctx := context.Background()
	if err := config.Load(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Bare env names win over the file, matching the original tool's
	// behavior of reading GEMINI_API_KEY and friends directly.
	applyEnvOverrides(cfg)

	// Store the config path for future operations
	cfg.configPath = configPath
	cfg.lastModifiedAt = time.Now()

	return cfg, nil
}

// applyEnvOverrides overlays the well-known unprefixed environment variables
// onto the configuration. These are the names the original tool documented
// (and that a .env file loaded at startup populates), so they are honored in
// addition to the DAVINCIMCP_-prefixed forms the env provider reads.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RESOLVE_BRIDGE_SCRIPT"); v != "" {
		cfg.Resolve.BridgeScript = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("GEMINI_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Gemini.Temperature = f
		}
	}
	if v := os.Getenv("GEMINI_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Gemini.MaxOutputTokens = n
		}
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Anthropic.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_MODEL"); v != "" {
		cfg.Anthropic.Model = v
	}
	if v := os.Getenv("MCP_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MCP.Enabled = b
		}
	}
	if v := os.Getenv("MCP_SERVER_SCRIPT"); v != "" {
		cfg.MCP.ServerScript = v
	}
	if v := os.Getenv("MCP_SERVER_CAPABILITIES"); v != "" {
		cfg.MCP.Capabilities = v
	}
	if v := os.Getenv("FEEDBACK_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.FeedbackEnabled = b
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// MCPCapabilities returns the declared capability list split on commas,
// with whitespace trimmed and empty entries dropped.
func (c *Config) MCPCapabilities() []string {
	parts := strings.Split(c.MCP.Capabilities, ",")
	caps := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			caps = append(caps, p)
		}
	}
	return caps
}

// SaveToFile saves the configuration to the specified file
func (c *Config) SaveToFile(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Create directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Save using configurator's SaveToFile function
	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	// Update internal state
	c.configPath = path
	c.lastModifiedAt = time.Now()

	return nil
}

// Save saves the configuration to the last used file path
func (c *Config) Save() error {
	if c.configPath == "" {
		c.configPath = DefaultConfigFilename
	}
	return c.SaveToFile(c.configPath)
}

// GetConfigPath returns the path of the currently loaded configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}
