package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath = "config/config.yml"

	// maxDeadlineSeconds is the request limit of the hosting environment.
	maxDeadlineSeconds = 30
)

// DefaultChains is the chain set analyzed when the config does not name one.
var DefaultChains = []uint64{1, 137, 56, 43114, 42161, 10, 8453, 250, 25}

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port                string   `yaml:"port"`
	ReadTimeoutSeconds  int      `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int      `yaml:"writeTimeoutSeconds"`
	CORSAllowOrigins    []string `yaml:"corsAllowOrigins"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

// AnalysisConfig bounds a single wallet analysis.
type AnalysisConfig struct {
	DeadlineSeconds       int      `yaml:"deadlineSeconds"`
	SummaryTimeoutSeconds int      `yaml:"summaryTimeoutSeconds"`
	MaxConcurrentChains   int      `yaml:"maxConcurrentChains"`
	TransactionLimit      int      `yaml:"transactionLimit"`
	Chains                []uint64 `yaml:"chains"`
}

type RateLimitConfig struct {
	Requests     int   `yaml:"requests"`
	WindowMillis int64 `yaml:"windowMillis"`
}

type RetryConfig struct {
	MaxAttempts  int     `yaml:"maxAttempts"`
	DelaysMillis []int64 `yaml:"delaysMillis"`
}

type CircuitBreakerConfig struct {
	Threshold       int `yaml:"threshold"`
	CooldownSeconds int `yaml:"cooldownSeconds"`
}

// ProviderConfig configures one data vendor. An empty APIKey disables it.
type ProviderConfig struct {
	APIKey               string               `yaml:"apiKey"`
	BaseURL              string               `yaml:"baseURL"`
	RequestTimeoutMillis int64                `yaml:"requestTimeoutMillis"`
	RateLimit            RateLimitConfig      `yaml:"rateLimit"`
	Retry                RetryConfig          `yaml:"retry"`
	CircuitBreaker       CircuitBreakerConfig `yaml:"circuitBreaker"`
}

type ProvidersConfig struct {
	Covalent ProviderConfig `yaml:"covalent"`
	Moralis  ProviderConfig `yaml:"moralis"`
	Alchemy  ProviderConfig `yaml:"alchemy"`
}

// SummaryConfig configures the OpenAI summary generator.
type SummaryConfig struct {
	OpenAIKey         string  `yaml:"openAIKey"`
	BaseURL           string  `yaml:"baseURL"`
	Model             string  `yaml:"model"`
	MaxTokens         int     `yaml:"maxTokens"`
	Temperature       float32 `yaml:"temperature"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
}

// ChainsConfig configures the chain metadata cache.
type ChainsConfig struct {
	RefreshBaseURL        string `yaml:"refreshBaseURL"`
	CacheTTLHours         int    `yaml:"cacheTTLHours"`
	RequestTimeoutSeconds int    `yaml:"requestTimeoutSeconds"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Providers ProvidersConfig `yaml:"providers"`
	Summary   SummaryConfig   `yaml:"summary"`
	Chains    ChainsConfig    `yaml:"chains"`
}

// Load reads the YAML configuration file from the given path, loads a .env
// file when present, applies environment overrides and fills defaults.
// A missing file is not an error: every setting has a default and API keys
// can come from the environment alone.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithError(err).Warn("Failed to load .env file")
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logrus.WithField("path", path).Warn("Config file not found, using defaults")
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
		logrus.WithField("path", path).Info("Configuration file loaded")
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	reportProviders(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	override(&cfg.Providers.Covalent.APIKey, "COVALENT_API_KEY")
	override(&cfg.Providers.Moralis.APIKey, "MORALIS_API_KEY")
	override(&cfg.Providers.Alchemy.APIKey, "ALCHEMY_API_KEY")
	override(&cfg.Summary.OpenAIKey, "OPENAI_API_KEY")
	override(&cfg.Server.Port, "SERVER_PORT")
	override(&cfg.Logging.Level, "LOG_LEVEL")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if !strings.Contains(cfg.Server.Port, ":") {
		cfg.Server.Port = ":" + cfg.Server.Port
	}
	cfg.Server.ReadTimeoutSeconds = orInt(cfg.Server.ReadTimeoutSeconds, 15)
	cfg.Server.WriteTimeoutSeconds = orInt(cfg.Server.WriteTimeoutSeconds, 35)
	if len(cfg.Server.CORSAllowOrigins) == 0 {
		cfg.Server.CORSAllowOrigins = []string{"*"}
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	cfg.Analysis.DeadlineSeconds = orInt(cfg.Analysis.DeadlineSeconds, 25)
	cfg.Analysis.SummaryTimeoutSeconds = orInt(cfg.Analysis.SummaryTimeoutSeconds, 10)
	cfg.Analysis.MaxConcurrentChains = orInt(cfg.Analysis.MaxConcurrentChains, 5)
	cfg.Analysis.TransactionLimit = orInt(cfg.Analysis.TransactionLimit, 100)
	if len(cfg.Analysis.Chains) == 0 {
		cfg.Analysis.Chains = append([]uint64(nil), DefaultChains...)
	}

	providerDefaults(&cfg.Providers.Covalent, 100, 60000)
	providerDefaults(&cfg.Providers.Moralis, 100, 60000)
	providerDefaults(&cfg.Providers.Alchemy, 5, 1000)

	if cfg.Summary.Model == "" {
		cfg.Summary.Model = "gpt-4o"
	}
	cfg.Summary.MaxTokens = orInt(cfg.Summary.MaxTokens, 500)
	if cfg.Summary.Temperature <= 0 {
		cfg.Summary.Temperature = 0.7
	}
	if cfg.Summary.RequestsPerSecond <= 0 {
		cfg.Summary.RequestsPerSecond = 1
	}

	cfg.Chains.CacheTTLHours = orInt(cfg.Chains.CacheTTLHours, 24)
	cfg.Chains.RequestTimeoutSeconds = orInt(cfg.Chains.RequestTimeoutSeconds, 10)
}

func providerDefaults(p *ProviderConfig, requests int, windowMillis int64) {
	if p.RequestTimeoutMillis <= 0 {
		p.RequestTimeoutMillis = 15000
	}
	p.RateLimit.Requests = orInt(p.RateLimit.Requests, requests)
	if p.RateLimit.WindowMillis <= 0 {
		p.RateLimit.WindowMillis = windowMillis
	}
	p.Retry.MaxAttempts = orInt(p.Retry.MaxAttempts, 5)
	if len(p.Retry.DelaysMillis) == 0 {
		p.Retry.DelaysMillis = []int64{2000, 5000, 10000, 20000}
	}
	p.CircuitBreaker.Threshold = orInt(p.CircuitBreaker.Threshold, 3)
	p.CircuitBreaker.CooldownSeconds = orInt(p.CircuitBreaker.CooldownSeconds, 300)
}

func validate(cfg *Config) error {
	// The deadline has to end strictly before the host cuts the request off.
	if limit := maxDeadlineSeconds - 1; cfg.Analysis.DeadlineSeconds > limit {
		logrus.WithFields(logrus.Fields{
			"configured": cfg.Analysis.DeadlineSeconds,
			"max":        limit,
		}).Warn("analysis.deadlineSeconds reaches the host limit, clamping")
		cfg.Analysis.DeadlineSeconds = limit
	}
	if cfg.Analysis.SummaryTimeoutSeconds >= cfg.Analysis.DeadlineSeconds {
		return fmt.Errorf("analysis.summaryTimeoutSeconds (%d) must be below analysis.deadlineSeconds (%d)",
			cfg.Analysis.SummaryTimeoutSeconds, cfg.Analysis.DeadlineSeconds)
	}
	for _, id := range cfg.Analysis.Chains {
		if id == 0 {
			return fmt.Errorf("analysis.chains contains chain id 0")
		}
	}
	return nil
}

func reportProviders(cfg *Config) {
	for name, key := range map[string]string{
		"covalent": cfg.Providers.Covalent.APIKey,
		"moralis":  cfg.Providers.Moralis.APIKey,
		"alchemy":  cfg.Providers.Alchemy.APIKey,
		"openai":   cfg.Summary.OpenAIKey,
	} {
		if key == "" {
			logrus.WithField("provider", name).Warn("API key not configured, provider disabled")
		}
	}
}

// Timeout returns the per-request timeout.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.RequestTimeoutMillis) * time.Millisecond
}

// Window returns the rate-limit window.
func (p ProviderConfig) Window() time.Duration {
	return time.Duration(p.RateLimit.WindowMillis) * time.Millisecond
}

// Delays returns the backoff schedule between attempts.
func (p ProviderConfig) Delays() []time.Duration {
	delays := make([]time.Duration, len(p.Retry.DelaysMillis))
	for i, ms := range p.Retry.DelaysMillis {
		delays[i] = time.Duration(ms) * time.Millisecond
	}
	return delays
}

func (p ProviderConfig) Cooldown() time.Duration {
	return time.Duration(p.CircuitBreaker.CooldownSeconds) * time.Second
}

func (a AnalysisConfig) Deadline() time.Duration {
	return time.Duration(a.DeadlineSeconds) * time.Second
}

func (a AnalysisConfig) SummaryTimeout() time.Duration {
	return time.Duration(a.SummaryTimeoutSeconds) * time.Second
}

func orInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
