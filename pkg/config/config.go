package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultDisplayName = "AI Message Assistant"
	DefaultBackend     = "groq"
	DefaultAPIURL      = "https://api.groq.com/openai/v1/chat/completions"
	DefaultModel       = "llama-3.3-70b-versatile"
	DefaultTemperature = 0.7

	defaultTimeoutSeconds = 60
	envPrefix             = "MSGASSIST_"
)

// Config represents the application configuration
type Config struct {
	DisplayName       string   `json:"display_name" koanf:"display_name"`
	APIKey            string   `json:"api_key" koanf:"api_key"`
	Temperature       *float64 `json:"temperature,omitempty" koanf:"temperature"`
	Backend           string   `json:"backend" koanf:"backend"`
	APIURL            string   `json:"api_url" koanf:"api_url"`
	Model             string   `json:"model" koanf:"model"`
	APITimeoutSeconds int      `json:"api_timeout_seconds" koanf:"api_timeout_seconds"`
	StorePath         string   `json:"store_path,omitempty" koanf:"store_path"`
	LogLevel          string   `json:"log_level" koanf:"log_level"`
	LogFormat         string   `json:"log_format" koanf:"log_format"`
	LogFile           string   `json:"log_file" koanf:"log_file"`
}

// Default returns a configuration with default values.
// Temperature is left unset so the 0.7 default is applied at ask time.
func Default() Config {
	return Config{
		DisplayName:       DefaultDisplayName,
		APIKey:            "",
		Backend:           DefaultBackend,
		APIURL:            DefaultAPIURL,
		Model:             DefaultModel,
		APITimeoutSeconds: defaultTimeoutSeconds,
		LogLevel:          "info",
		LogFormat:         "json",
	}
}

// Load loads configuration from the specified path, then overlays
// MSGASSIST_* environment variables.
// If the file doesn't exist, creates one with default values
func Load(configPath string) (Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return Config{}, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); err != nil {
		if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := Save(configPath, Default()); err != nil {
			return Config{}, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(configPath), koanfjson.Parser()); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	// MSGASSIST_API_KEY -> api_key, MSGASSIST_LOG_LEVEL -> log_level
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load env overrides: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the specified path
func Save(configPath string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

var validBackends = map[string]bool{
	"groq":   true,
	"openai": true,
	"google": true,
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	backend := strings.ToLower(strings.TrimSpace(c.Backend))
	if backend != "" && !validBackends[backend] {
		return fmt.Errorf("unsupported backend: %s", c.Backend)
	}

	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 1) {
		return fmt.Errorf("temperature must be between 0 and 1, got: %g", *c.Temperature)
	}

	if c.APITimeoutSeconds < 0 {
		return fmt.Errorf("api_timeout_seconds must not be negative, got: %d", c.APITimeoutSeconds)
	}

	return nil
}

// Settings is the snapshot of user-editable values read once per ask.
type Settings struct {
	DisplayName string
	APIKey      string
	Temperature float64
}

// Settings resolves the user-facing values, applying the display name and
// temperature defaults.
func (c Config) Settings() Settings {
	name := strings.TrimSpace(c.DisplayName)
	if name == "" {
		name = DefaultDisplayName
	}

	temperature := DefaultTemperature
	if c.Temperature != nil {
		temperature = *c.Temperature
	}

	return Settings{
		DisplayName: name,
		APIKey:      c.APIKey,
		Temperature: temperature,
	}
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".msgassist/config.json"
	}
	return filepath.Join(homeDir, ".msgassist", "config.json")
}
