package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	SMTP      SMTPConfig      `yaml:"smtp" mapstructure:"smtp"`
	Outreach  OutreachConfig  `yaml:"outreach" mapstructure:"outreach"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Render    RenderConfig    `yaml:"render" mapstructure:"render"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SMTPConfig holds outbound mail settings. Leaving username/password empty
// switches sending to simulation mode.
type SMTPConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
}

// OutreachConfig configures the eligibility gate and email identity.
type OutreachConfig struct {
	SenderEmail string `yaml:"sender_email" mapstructure:"sender_email"`
	HourlyLimit int    `yaml:"hourly_limit" mapstructure:"hourly_limit"`
	BrandName   string `yaml:"brand_name" mapstructure:"brand_name"`
	SignerName  string `yaml:"signer_name" mapstructure:"signer_name"`
	Phone       string `yaml:"phone" mapstructure:"phone"`
}

// FetchConfig configures website fetching.
type FetchConfig struct {
	TimeoutSecs int  `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxChars    int  `yaml:"max_chars" mapstructure:"max_chars"`
	Crawl       bool `yaml:"crawl" mapstructure:"crawl"`
	MaxSubpages int  `yaml:"max_subpages" mapstructure:"max_subpages"`
}

// RenderConfig configures summary card output.
type RenderConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "outreach.db")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("outreach.hourly_limit", 10)
	v.SetDefault("outreach.brand_name", "SERP Hawk")
	v.SetDefault("outreach.signer_name", "Brajesh Kumar")
	v.SetDefault("outreach.phone", "089213 81769")
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.max_chars", 15000)
	v.SetDefault("fetch.crawl", false)
	v.SetDefault("fetch.max_subpages", 3)
	v.SetDefault("render.dir", "static/generated_images")
	v.SetDefault("server.port", 8000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

	return &cfg, nil
}

// Validate checks the settings the gate and mailer cannot run without.
func (c *Config) Validate() error {
	if c.Outreach.SenderEmail == "" {
		return eris.New("config: outreach.sender_email is required")
	}
	if c.Outreach.HourlyLimit <= 0 {
		return eris.New("config: outreach.hourly_limit must be positive")
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
