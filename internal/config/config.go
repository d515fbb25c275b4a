// Package config loads and validates the YAML configuration file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okaneo/jobscout/internal/source"
)

// Config is the root configuration for the collector.
type Config struct {
	Interval          time.Duration
	Concurrency       int
	MaxAge            time.Duration // 0 disables age filtering
	OutputDir         string
	OutputFormats     []string // any of "json", "csv", "html"
	SkipNormalization bool
	Sources           []SourceConfig
	Store             StoreConfig
	LLM               LLMConfig
	Notification      NotificationConfig
	RateLimit         RateLimitConfig
}

// SourceConfig describes one board or career page to collect from.
type SourceConfig struct {
	Name     string `yaml:"name"`
	Platform string `yaml:"platform"`
	Token    string `yaml:"token"`
	Endpoint string `yaml:"endpoint"`
	Keywords string `yaml:"keywords"`
	Cap      int    `yaml:"cap"`
	Enabled  bool   `yaml:"enabled"`
}

// StoreConfig selects and configures the seen-store backend.
type StoreConfig struct {
	Backend string `yaml:"backend"` // sqlite | postgres | redis | memory
	Path    string `yaml:"path"`    // sqlite file path
	DSN     string `yaml:"dsn"`     // postgres connection string
	URL     string `yaml:"url"`     // redis URL
}

// LLMConfig controls the extraction and normalization model.
type LLMConfig struct {
	Provider  string // openai | googleai
	BaseURL   string // openai only, defaults to https://api.openai.com/v1
	Model     string
	APIKey    string // expanded from env var by Load
	Timeout   time.Duration
	Normalize bool // run LLM normalization over collected postings
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string      `yaml:"type"`        // "log", "slack", or "email"
	WebhookURL string      `yaml:"webhook_url"` // required if type is "slack"
	Email      EmailConfig `yaml:"email"`       // required if type is "email"
}

// EmailConfig holds SMTP settings for the email notifier.
type EmailConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// RateLimitConfig controls platform-level request spacing.
type RateLimitConfig struct {
	MinDelay  time.Duration
	Overrides map[string]time.Duration // per-platform overrides
}

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// rawConfig is used for YAML unmarshaling (snake_case fields and durations
// as strings).
type rawConfig struct {
	Interval          string             `yaml:"interval"`
	Concurrency       int                `yaml:"concurrency"`
	MaxAge            string             `yaml:"max_age"`
	OutputDir         string             `yaml:"output_dir"`
	OutputFormats     []string           `yaml:"output_formats"`
	SkipNormalization bool               `yaml:"skip_normalization"`
	Sources           []SourceConfig     `yaml:"sources"`
	Store             StoreConfig        `yaml:"store"`
	LLM               rawLLMConfig       `yaml:"llm"`
	Notification      NotificationConfig `yaml:"notification"`
	RateLimit         rawRateLimitConfig `yaml:"rate_limit"`
}

type rawLLMConfig struct {
	Provider  string `yaml:"provider"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	Timeout   string `yaml:"timeout"`
	Normalize bool   `yaml:"normalize"`
}

type rawRateLimitConfig struct {
	MinDelay  string            `yaml:"min_delay"`
	Overrides map[string]string `yaml:"overrides"`
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. Environment variable references in the file are expanded
// before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	interval := 1 * time.Hour
	if raw.Interval != "" {
		interval, err = time.ParseDuration(raw.Interval)
		if err != nil {
			return nil, fmt.Errorf("parse interval %q: %w", raw.Interval, err)
		}
	}

	var maxAge time.Duration
	if raw.MaxAge != "" {
		maxAge, err = time.ParseDuration(raw.MaxAge)
		if err != nil {
			return nil, fmt.Errorf("parse max_age %q: %w", raw.MaxAge, err)
		}
	}

	minDelay := 2 * time.Second
	if raw.RateLimit.MinDelay != "" {
		minDelay, err = time.ParseDuration(raw.RateLimit.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.min_delay %q: %w", raw.RateLimit.MinDelay, err)
		}
	}

	overrides := make(map[string]time.Duration)
	for platform, s := range raw.RateLimit.Overrides {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.overrides[%q]: %w", platform, err)
		}
		overrides[platform] = d
	}

	llmTimeout := 60 * time.Second
	if raw.LLM.Timeout != "" {
		llmTimeout, err = time.ParseDuration(raw.LLM.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse llm.timeout %q: %w", raw.LLM.Timeout, err)
		}
	}

	baseURL := raw.LLM.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	concurrency := raw.Concurrency
	if concurrency == 0 {
		concurrency = 4
	}

	outputDir := raw.OutputDir
	if outputDir == "" {
		outputDir = "output"
	}

	formats := raw.OutputFormats
	if len(formats) == 0 {
		formats = []string{"json"}
	}

	storeCfg := raw.Store
	if storeCfg.Backend == "" {
		storeCfg.Backend = "sqlite"
	}
	if storeCfg.Backend == "sqlite" && storeCfg.Path == "" {
		storeCfg.Path = "jobscout.db"
	}

	notification := raw.Notification
	if notification.Type == "" {
		notification.Type = "log"
	}

	cfg := &Config{
		Interval:          interval,
		Concurrency:       concurrency,
		MaxAge:            maxAge,
		OutputDir:         outputDir,
		OutputFormats:     formats,
		SkipNormalization: raw.SkipNormalization,
		Sources:           raw.Sources,
		Store:             storeCfg,
		LLM: LLMConfig{
			Provider:  raw.LLM.Provider,
			BaseURL:   baseURL,
			Model:     raw.LLM.Model,
			APIKey:    raw.LLM.APIKey,
			Timeout:   llmTimeout,
			Normalize: raw.LLM.Normalize,
		},
		Notification: notification,
		RateLimit: RateLimitConfig{
			MinDelay:  minDelay,
			Overrides: overrides,
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EnabledSources converts the enabled source entries to descriptors ready
// for the registry.
func (c *Config) EnabledSources() []source.Descriptor {
	var descs []source.Descriptor
	for _, s := range c.Sources {
		if !s.Enabled {
			continue
		}
		descs = append(descs, source.Descriptor{
			Name:     s.Name,
			Platform: s.Platform,
			Token:    s.Token,
			Endpoint: s.Endpoint,
			Keywords: s.Keywords,
			Cap:      s.Cap,
		})
	}
	return descs
}

// NeedsLLM reports whether any enabled source requires the extraction model.
func (c *Config) NeedsLLM() bool {
	for _, s := range c.Sources {
		if s.Enabled && s.Platform == "html" {
			return true
		}
	}
	return c.LLM.Normalize
}

func validate(cfg *Config) error {
	if cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", cfg.Interval)
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", cfg.Concurrency)
	}

	enabled := 0
	for i, s := range cfg.Sources {
		if !s.Enabled {
			continue
		}
		enabled++
		if s.Name == "" {
			return fmt.Errorf("sources[%d].name is required", i)
		}
		if s.Platform == "" {
			return fmt.Errorf("source %q: platform is required", s.Name)
		}
		if s.Cap < 0 {
			return fmt.Errorf("source %q: cap must not be negative", s.Name)
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	for _, f := range cfg.OutputFormats {
		switch f {
		case "json", "csv", "html":
		default:
			return fmt.Errorf("unknown output format %q", f)
		}
	}

	switch cfg.Store.Backend {
	case "sqlite":
		if cfg.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite backend")
		}
	case "postgres":
		if cfg.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the postgres backend")
		}
	case "redis":
		if cfg.Store.URL == "" {
			return fmt.Errorf("store.url is required for the redis backend")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	case "email":
		e := cfg.Notification.Email
		if e.Host == "" || e.Port == 0 || e.From == "" || len(e.To) == 0 {
			return fmt.Errorf("notification.email requires host, port, from, and to")
		}
	default:
		return fmt.Errorf("unknown notification type %q", cfg.Notification.Type)
	}

	if cfg.NeedsLLM() {
		switch cfg.LLM.Provider {
		case "openai", "googleai":
		case "":
			return fmt.Errorf("llm.provider is required when an html source is enabled or llm.normalize is set")
		default:
			return fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required when the model is in use")
		}
		if cfg.LLM.Model == "" {
			return fmt.Errorf("llm.model is required when the model is in use")
		}
	}

	return nil
}
