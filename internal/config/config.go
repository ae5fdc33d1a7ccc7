// ABOUTME: Configuration loading and parsing for weft-chatd
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete weft-chatd configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Chat    ChatConfig    `yaml:"chat"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds the listen address.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// ChatConfig controls the scripted chat behavior.
type ChatConfig struct {
	// TokenDelay is the pause between streamed tokens.
	TokenDelay time.Duration `yaml:"-"`
	// Replies are cycled through as assistant responses. Empty uses a
	// built-in default.
	Replies []string `yaml:"replies"`
	// ToolTrigger, when non-empty, makes any message containing this
	// substring suspend the stream with a scripted tool call.
	ToolTrigger string `yaml:"tool_trigger"`

	// Raw string value for YAML unmarshaling
	TokenDelayRaw string `yaml:"token_delay"`
}

// AuthConfig holds bearer-token authentication configuration. An empty
// token disables authentication entirely.
type AuthConfig struct {
	Token string `yaml:"token"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8484"},
		Chat:   ChatConfig{TokenDelay: 25 * time.Millisecond},
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values.
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Chat.TokenDelayRaw != "" {
		cfg.Chat.TokenDelay, err = time.ParseDuration(cfg.Chat.TokenDelayRaw)
		if err != nil {
			return fmt.Errorf("parsing token_delay %q: %w", cfg.Chat.TokenDelayRaw, err)
		}
	}

	return nil
}
