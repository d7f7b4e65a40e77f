package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// configDir is the configuration directory path
	// Can be set via SetConfigDir before loading config
	configDir     string
	configDirInit bool
)

// Known provider names, in default registration order first.
const (
	ProviderTavily     = "tavily"
	ProviderBrave      = "brave"
	ProviderDuckDuckGo = "duckduckgo"
	ProviderSearXNG    = "searxng"
)

// SetConfigDir sets a custom configuration directory
// Must be called before any config loading functions
func SetConfigDir(dir string) {
	configDir = dir
	configDirInit = true
}

// GetConfigDir returns the configuration directory
// Priority: 1. Manually set via SetConfigDir, 2. ./config in current directory
func GetConfigDir() string {
	if !configDirInit {
		cwd, err := os.Getwd()
		if err == nil {
			configDir = filepath.Join(cwd, "config")
		}
		configDirInit = true
	}
	return configDir
}

// Config application configuration structure
type Config struct {
	Search    SearchConfig    `yaml:"search"`
	Providers ProvidersConfig `yaml:"providers"`
	Log       LogConfig       `yaml:"log"`
}

// SearchConfig controls the fan-out.
type SearchConfig struct {
	// Providers is the registration order; results are reported in this order.
	Providers       []string `yaml:"providers"`
	Concurrent      bool     `yaml:"concurrent"`
	ShowDiagnostics bool     `yaml:"show_diagnostics"`
}

// ProvidersConfig per-provider settings
type ProvidersConfig struct {
	Tavily     ProviderConfig `yaml:"tavily"`
	Brave      ProviderConfig `yaml:"brave"`
	DuckDuckGo ProviderConfig `yaml:"duckduckgo"`
	SearXNG    ProviderConfig `yaml:"searxng"`
}

// ProviderConfig settings for one search provider
type ProviderConfig struct {
	BaseURL        string `yaml:"base_url"`
	Credential     string `yaml:"credential,omitempty"`
	MaxResults     int    `yaml:"max_results"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	SearchDepth    string `yaml:"search_depth,omitempty"`
	IncludeAnswer  bool   `yaml:"include_answer"`
	UserAgent      string `yaml:"user_agent,omitempty"`
}

// LogConfig logging configuration
type LogConfig struct {
	Level   string `yaml:"level"`
	MaxDays int    `yaml:"max_days"`
	Console bool   `yaml:"console"`
	JSON    bool   `yaml:"json"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Providers:       []string{ProviderTavily, ProviderBrave},
			Concurrent:      false,
			ShowDiagnostics: true,
		},
		Providers: ProvidersConfig{
			Tavily: ProviderConfig{
				BaseURL:        "https://api.tavily.com/search",
				Credential:     "TAVILY_API_KEY",
				MaxResults:     5,
				TimeoutSeconds: 30,
				SearchDepth:    "advanced",
				IncludeAnswer:  true,
			},
			Brave: ProviderConfig{
				BaseURL:        "https://api.search.brave.com/res/v1/web/search",
				Credential:     "BRAVE_API_KEY",
				MaxResults:     5,
				TimeoutSeconds: 30,
			},
			DuckDuckGo: ProviderConfig{
				BaseURL:        "https://api.duckduckgo.com",
				MaxResults:     5,
				TimeoutSeconds: 15,
				UserAgent:      "steve/0.1",
			},
			SearXNG: ProviderConfig{
				BaseURL:        "http://localhost:8080",
				Credential:     "SEARXNG_API_KEY",
				MaxResults:     5,
				TimeoutSeconds: 15,
				UserAgent:      "steve/0.1",
			},
		},
		Log: LogConfig{
			Level:   "info",
			MaxDays: 7,
			Console: false,
			JSON:    false,
		},
	}
}

// Provider returns the settings for a named provider.
func (c *Config) Provider(name string) (ProviderConfig, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProviderTavily:
		return c.Providers.Tavily, true
	case ProviderBrave:
		return c.Providers.Brave, true
	case ProviderDuckDuckGo, "ddg":
		return c.Providers.DuckDuckGo, true
	case ProviderSearXNG:
		return c.Providers.SearXNG, true
	default:
		return ProviderConfig{}, false
	}
}

// ConfigDir returns the configuration directory path
func ConfigDir() (string, error) {
	dir := GetConfigDir()
	if dir == "" {
		return "", fmt.Errorf("failed to determine config directory")
	}
	return dir, nil
}

// LogDir returns the log directory path
func LogDir() string {
	dir := GetConfigDir()
	if dir == "" {
		return "logs"
	}
	return filepath.Join(dir, "logs")
}

// ConfigPath returns the configuration file path
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads configuration from file, creating a default one on first run.
// Credentials are not part of the file; see Secrets.
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := Save(cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig() // Use default values as base
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves configuration to file
func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	content := "# steve configuration file\n# Credentials go in .secrets (KEY=VALUE) or the environment.\n\n" + string(data)

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Search.Providers) == 0 {
		return fmt.Errorf("config error: search.providers cannot be empty")
	}

	seen := make(map[string]bool, len(c.Search.Providers))
	for _, name := range c.Search.Providers {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "ddg" {
			key = ProviderDuckDuckGo
		}
		pc, ok := c.Provider(key)
		if !ok {
			return fmt.Errorf("config error: unknown provider %q in search.providers", name)
		}
		if seen[key] {
			return fmt.Errorf("config error: provider %q listed twice in search.providers", name)
		}
		seen[key] = true
		if err := pc.validate(key); err != nil {
			return err
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config error: log.level must be one of debug, info, warn, error")
	}

	return nil
}

func (p ProviderConfig) validate(name string) error {
	if strings.TrimSpace(p.BaseURL) == "" {
		return fmt.Errorf("config error: providers.%s.base_url cannot be empty", name)
	}
	if p.MaxResults <= 0 {
		return fmt.Errorf("config error: providers.%s.max_results must be greater than 0", name)
	}
	if p.TimeoutSeconds <= 0 {
		return fmt.Errorf("config error: providers.%s.timeout_seconds must be greater than 0", name)
	}
	switch name {
	case ProviderTavily:
		if p.SearchDepth != "basic" && p.SearchDepth != "advanced" {
			return fmt.Errorf("config error: providers.tavily.search_depth must be basic or advanced")
		}
		fallthrough
	case ProviderBrave:
		if strings.TrimSpace(p.Credential) == "" {
			return fmt.Errorf("config error: providers.%s.credential cannot be empty", name)
		}
	}
	return nil
}

// String returns string representation of config. Credential values are
// never shown, only whether creds can resolve them.
func (c *Config) String() string {
	return c.Describe(nil)
}

// Describe renders the config, reporting credential status through creds.
func (c *Config) Describe(creds *Secrets) string {
	var b strings.Builder
	fmt.Fprintf(&b, "steve configuration:\n")
	fmt.Fprintf(&b, "  Search:\n")
	fmt.Fprintf(&b, "    Providers: %s\n", strings.Join(c.Search.Providers, ", "))
	fmt.Fprintf(&b, "    Concurrent: %v\n", c.Search.Concurrent)
	fmt.Fprintf(&b, "    Show Diagnostics: %v\n", c.Search.ShowDiagnostics)
	fmt.Fprintf(&b, "  Providers:\n")
	for _, name := range []string{ProviderTavily, ProviderBrave, ProviderDuckDuckGo, ProviderSearXNG} {
		p, _ := c.Provider(name)
		fmt.Fprintf(&b, "    %s:\n", name)
		fmt.Fprintf(&b, "      Base URL: %s\n", p.BaseURL)
		if p.Credential != "" {
			fmt.Fprintf(&b, "      Credential: %s%s\n", p.Credential, credentialStatus(creds, p.Credential))
		}
		fmt.Fprintf(&b, "      Max Results: %d\n", p.MaxResults)
		fmt.Fprintf(&b, "      Timeout Seconds: %d\n", p.TimeoutSeconds)
		if p.SearchDepth != "" {
			fmt.Fprintf(&b, "      Search Depth: %s\n", p.SearchDepth)
		}
	}
	fmt.Fprintf(&b, "  Log:\n")
	fmt.Fprintf(&b, "    Level: %s\n", c.Log.Level)
	fmt.Fprintf(&b, "    Max Days: %d\n", c.Log.MaxDays)
	fmt.Fprintf(&b, "    Console: %v", c.Log.Console)
	return b.String()
}

func credentialStatus(creds *Secrets, name string) string {
	if creds == nil {
		return ""
	}
	if creds.Lookup(name) == "" {
		return " (not configured)"
	}
	return " (configured)"
}
