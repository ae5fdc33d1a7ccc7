// ABOUTME: Configuration loading for the weft terminal client
// ABOUTME: Loads TOML config from XDG path with environment variable expansion

package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Display DisplayConfig `toml:"display"`
}

type ServerConfig struct {
	URL string `toml:"url"`
}

type DisplayConfig struct {
	// Mode is "full" or "last-turn".
	Mode string `toml:"mode"`
	// Collapsible enables the /collapse command.
	Collapsible bool `toml:"collapsible"`
}

// defaultConfigPath resolves the XDG config location for the TUI.
// Priority: WEFT_CONFIG env var > $XDG_CONFIG_HOME/weft/tui.toml > ~/.config/weft/tui.toml
func defaultConfigPath() string {
	if envPath := os.Getenv("WEFT_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "tui.toml"
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "weft", "tui.toml")
}

// loadConfig reads config from the given path, expanding environment
// variables. A missing file yields the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{
		Server:  ServerConfig{URL: "http://localhost:8484"},
		Display: DisplayConfig{Mode: "full"},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))
	if _, err := toml.Decode(expanded, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// Validate checks that required config fields are present and valid.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("server.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.url must use http or https scheme")
	}
	switch c.Display.Mode {
	case "full", "last-turn":
	default:
		return fmt.Errorf("display.mode must be %q or %q", "full", "last-turn")
	}
	return nil
}
