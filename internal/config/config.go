package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/fedwatch/fedwatch/internal/providers"
)

// Load reads configuration from the given file (or the default search
// paths when cfgFile is empty), layered under FEDWATCH_* environment
// variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("backends", defaults.Backends)
	v.SetDefault("defaults", defaults.Defaults)
	v.SetDefault("store", defaults.Store)
	v.SetDefault("output", defaults.Output)

	v.SetEnvPrefix("FEDWATCH")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.fedwatch")
	}

	// Config file is optional; defaults plus env cover a bare setup.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envRef.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// ToRegistryConfig converts the config to a format suitable for
// providers.NewRegistryFromConfig, resolving ${ENV_VAR} references in
// API keys.
func (c *Config) ToRegistryConfig() map[string]providers.BackendConfig {
	out := make(map[string]providers.BackendConfig, len(c.Backends))
	for name, b := range c.Backends {
		out[name] = providers.BackendConfig{
			Type:    b.Type,
			Model:   b.Model,
			APIKey:  ResolveEnvVars(b.APIKey),
			Enabled: b.Enabled,
		}
	}
	return out
}

// StoreAPIKey returns the store API key with ${ENV_VAR} references
// resolved.
func (c *Config) StoreAPIKey() string {
	return ResolveEnvVars(c.Store.APIKey)
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# fedwatch configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set these in your shell: export OPENAI_API_KEY=xxx GEMINI_API_KEY=xxx OPENROUTER_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
