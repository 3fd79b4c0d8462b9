package config

// Config holds fedwatch configuration.
// Stored at: ./config.yaml or $HOME/.fedwatch/config.yaml
type Config struct {
	Backends map[string]BackendCfg `mapstructure:"backends" yaml:"backends"`
	Defaults DefaultsCfg           `mapstructure:"defaults" yaml:"defaults"`
	Store    StoreCfg              `mapstructure:"store" yaml:"store"`
	Output   OutputCfg             `mapstructure:"output" yaml:"output"`
}

// BackendCfg configures an LLM backend.
type BackendCfg struct {
	Type    string `mapstructure:"type" yaml:"type"`       // "openai", "gemini", "openrouter", "mock"
	Model   string `mapstructure:"model" yaml:"model"`     // Model name
	APIKey  string `mapstructure:"api_key" yaml:"api_key"` // API key (supports ${ENV_VAR} syntax)
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default run parameters.
type DefaultsCfg struct {
	Backend          string `mapstructure:"backend" yaml:"backend"`                       // Default LLM backend
	MaxAttempts      int    `mapstructure:"max_attempts" yaml:"max_attempts"`             // Extraction attempts per document
	MaxDocumentChars int    `mapstructure:"max_document_chars" yaml:"max_document_chars"` // Document truncation budget
	RecordLimit      int    `mapstructure:"record_limit" yaml:"record_limit"`             // Max documents per run (0 = all)
}

// StoreCfg configures the content store the pipeline checks titles
// against.
type StoreCfg struct {
	URL            string `mapstructure:"url" yaml:"url"`
	APIKey         string `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// OutputCfg names the files a run writes.
type OutputCfg struct {
	Dir             string `mapstructure:"dir" yaml:"dir"`
	EnforcementFile string `mapstructure:"enforcement_file" yaml:"enforcement_file"`
	RulesFile       string `mapstructure:"rules_file" yaml:"rules_file"`
	DigestFile      string `mapstructure:"digest_file" yaml:"digest_file"`
	CallLog         string `mapstructure:"call_log" yaml:"call_log"` // JSONL audit trail of LLM calls
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Backends: map[string]BackendCfg{
			"openai": {
				Type:    "openai",
				Model:   "gpt-4o",
				APIKey:  "${OPENAI_API_KEY}",
				Enabled: true,
			},
			"gemini": {
				Type:    "gemini",
				Model:   "gemini-1.5-pro",
				APIKey:  "${GEMINI_API_KEY}",
				Enabled: true,
			},
			"openrouter": {
				Type:    "openrouter",
				Model:   "anthropic/claude-sonnet-4",
				APIKey:  "${OPENROUTER_API_KEY}",
				Enabled: true,
			},
		},
		Defaults: DefaultsCfg{
			Backend:          "openai",
			MaxAttempts:      3,
			MaxDocumentChars: 48000,
			RecordLimit:      0,
		},
		Store: StoreCfg{
			URL:            "http://localhost:8080",
			APIKey:         "${FEDWATCH_STORE_KEY}",
			TimeoutSeconds: 30,
		},
		Output: OutputCfg{
			Dir:             ".",
			EnforcementFile: "epa.json",
			RulesFile:       "fr.json",
			DigestFile:      "fr_news.json",
			CallLog:         "llm_calls.jsonl",
		},
	}
}

// GetBackend returns a backend config by name.
func (c *Config) GetBackend(name string) (BackendCfg, bool) {
	cfg, ok := c.Backends[name]
	return cfg, ok
}

// EnabledBackends returns all enabled backends.
func (c *Config) EnabledBackends() map[string]BackendCfg {
	result := make(map[string]BackendCfg)
	for name, cfg := range c.Backends {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
