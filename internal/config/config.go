package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AppName names the XDG config directory.
const AppName = "site-analyzer"

// Provider names accepted by crawl.provider and llm.provider.
const (
	ProviderFirecrawl = "firecrawl"
	ProviderJina      = "jina"
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
)

// Config holds the full application configuration.
type Config struct {
	Firecrawl FirecrawlConfig `yaml:"firecrawl" mapstructure:"firecrawl"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Groq      GroqConfig      `yaml:"groq" mapstructure:"groq"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Crawl     CrawlConfig     `yaml:"crawl" mapstructure:"crawl"`
	Analysis  AnalysisConfig  `yaml:"analysis" mapstructure:"analysis"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Session   SessionConfig   `yaml:"session" mapstructure:"session"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// FirecrawlConfig configures the Firecrawl API.
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// JinaConfig configures the Jina Reader API. The key is optional.
type JinaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// GroqConfig configures the Groq chat completions API.
type GroqConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig configures the Anthropic API.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// LLMConfig selects the language-model provider.
type LLMConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
}

// CrawlConfig configures crawl provider selection and job polling.
type CrawlConfig struct {
	Provider         string `yaml:"provider" mapstructure:"provider"`
	PageLimit        int    `yaml:"page_limit" mapstructure:"page_limit"`
	PollIntervalSecs int    `yaml:"poll_interval_secs" mapstructure:"poll_interval_secs"`
	PollCapSecs      int    `yaml:"poll_cap_secs" mapstructure:"poll_cap_secs"`
	TimeoutSecs      int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// AnalysisConfig configures prompt construction.
type AnalysisConfig struct {
	MaxChars int `yaml:"max_chars" mapstructure:"max_chars"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"` // requests/sec, 0 disables
	RateBurst   int      `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// SessionConfig configures in-memory session expiry.
type SessionConfig struct {
	TTLMinutes int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from an optional .env file, config.yaml (working
// directory first, then the XDG config dir) and ANALYZER_* environment
// variables. Provider keys also honour their conventional variable names.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: read .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(filepath.Join(xdg.ConfigHome, AppName))

	// Environment
	v.SetEnvPrefix("ANALYZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range map[string]string{
		"firecrawl.key": "FIRECRAWL_API_KEY",
		"jina.key":      "JINA_API_KEY",
		"groq.key":      "GROQ_API_KEY",
		"anthropic.key": "ANTHROPIC_API_KEY",
	} {
		envKey := "ANALYZER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, legacy); err != nil {
			return nil, eris.Wrapf(err, "config: bind %s", key)
		}
	}

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 5.0)
	v.SetDefault("server.rate_burst", 10)
	v.SetDefault("session.ttl_minutes", 60)
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v1")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("groq.model", "llama-3.1-8b-instant")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("llm.provider", ProviderGroq)
	v.SetDefault("crawl.provider", ProviderFirecrawl)
	v.SetDefault("crawl.page_limit", 10)
	v.SetDefault("crawl.poll_interval_secs", 2)
	v.SetDefault("crawl.poll_cap_secs", 10)
	v.SetDefault("crawl.timeout_secs", 300)
	v.SetDefault("analysis.max_chars", 6000)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.Crawl.Provider = strings.ToLower(strings.TrimSpace(cfg.Crawl.Provider))

	return &cfg, nil
}

// Validate rejects settings no component can run with. Missing provider
// keys are not checked here; they fail the call that needs them.
func (c *Config) Validate() error {
	switch c.Crawl.Provider {
	case ProviderFirecrawl, ProviderJina:
	default:
		return eris.Errorf("config: unknown crawl.provider %q", c.Crawl.Provider)
	}
	switch c.LLM.Provider {
	case ProviderGroq, ProviderAnthropic:
	default:
		return eris.Errorf("config: unknown llm.provider %q", c.LLM.Provider)
	}

	positive := []struct {
		key string
		val int64
	}{
		{"crawl.page_limit", int64(c.Crawl.PageLimit)},
		{"crawl.poll_interval_secs", int64(c.Crawl.PollIntervalSecs)},
		{"crawl.poll_cap_secs", int64(c.Crawl.PollCapSecs)},
		{"crawl.timeout_secs", int64(c.Crawl.TimeoutSecs)},
		{"analysis.max_chars", int64(c.Analysis.MaxChars)},
		{"anthropic.max_tokens", c.Anthropic.MaxTokens},
	}
	for _, p := range positive {
		if p.val <= 0 {
			return eris.Errorf("config: %s must be positive, got %d", p.key, p.val)
		}
	}

	// Zero keeps sessions until they are deleted.
	if c.Session.TTLMinutes < 0 {
		return eris.Errorf("config: session.ttl_minutes must not be negative, got %d", c.Session.TTLMinutes)
	}

	if c.Crawl.PollCapSecs < c.Crawl.PollIntervalSecs {
		return eris.New("config: crawl.poll_cap_secs must not be below crawl.poll_interval_secs")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return eris.New("config: server.rate_limit must not be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
		return eris.New("config: server.rate_burst must be positive when rate limiting is on")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
