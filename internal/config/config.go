package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Price    PriceConfig    `yaml:"price"`
	Sources  SourcesConfig  `yaml:"sources"`
	Storage  StorageConfig  `yaml:"storage"`
	Web      WebConfig      `yaml:"web"`
	Auth     AuthConfig     `yaml:"auth"`
	News     NewsConfig     `yaml:"news"`
	DeepSeek DeepSeekConfig `yaml:"deepseek"`
	Telegram TelegramConfig `yaml:"telegram"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type PriceConfig struct {
	CacheTTL        string  `yaml:"cache_ttl"`
	SourceTimeout   string  `yaml:"source_timeout"`
	RefreshInterval string  `yaml:"refresh_interval"` // "0" disables the background refresher
	BaselineCNY     float64 `yaml:"baseline_cny"`
	SyntheticBand   float64 `yaml:"synthetic_band"`
	SyntheticStep   float64 `yaml:"synthetic_step"`
	AssumedUSDCNY   float64 `yaml:"assumed_usdcny"`
}

type SourcesConfig struct {
	// Order is the cascade precedence; unknown names are rejected.
	Order        []string `yaml:"order"`
	Jin10URL     string   `yaml:"jin10_url"`
	SinaURL      string   `yaml:"sina_url"`
	RatePerSec   float64  `yaml:"rate_per_sec"`
	RateBurst    int      `yaml:"rate_burst"`
	UserAgent    string   `yaml:"user_agent"`
	SinaReferer  string   `yaml:"sina_referer"`
	HTTPTimeoutS int      `yaml:"http_timeout_seconds"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type WebConfig struct {
	Port int `yaml:"port"`
}

type AuthConfig struct {
	AdminKey string `yaml:"admin_key"`
	TokenTTL string `yaml:"token_ttl"`
}

type NewsConfig struct {
	APIKey   string `yaml:"api_key"`
	URL      string `yaml:"url"`
	PageSize int    `yaml:"page_size"`
}

type DeepSeekConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

const (
	SourceJin10 = "jin10"
	SourceSina  = "sina"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Default returns a validated config with every default applied.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	if cfg.Price.CacheTTL == "" {
		cfg.Price.CacheTTL = "60s"
	}
	if cfg.Price.SourceTimeout == "" {
		cfg.Price.SourceTimeout = "5s"
	}
	if cfg.Price.RefreshInterval == "" {
		cfg.Price.RefreshInterval = "60s"
	}
	if cfg.Price.BaselineCNY == 0 {
		cfg.Price.BaselineCNY = 480
	}
	if cfg.Price.SyntheticBand == 0 {
		cfg.Price.SyntheticBand = 15
	}
	if cfg.Price.SyntheticStep == 0 {
		cfg.Price.SyntheticStep = 2.5
	}
	if cfg.Price.AssumedUSDCNY == 0 {
		cfg.Price.AssumedUSDCNY = 7.20
	}
	if len(cfg.Sources.Order) == 0 {
		cfg.Sources.Order = []string{SourceJin10, SourceSina}
	}
	if cfg.Sources.Jin10URL == "" {
		cfg.Sources.Jin10URL = "https://api.jin10.com/data_center/market/au9999"
	}
	if cfg.Sources.SinaURL == "" {
		cfg.Sources.SinaURL = "http://hq.sinajs.cn/list=hf_XAU,USDCNY"
	}
	if cfg.Sources.RatePerSec == 0 {
		cfg.Sources.RatePerSec = 2
	}
	if cfg.Sources.RateBurst == 0 {
		cfg.Sources.RateBurst = 4
	}
	if cfg.Sources.UserAgent == "" {
		cfg.Sources.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36"
	}
	if cfg.Sources.SinaReferer == "" {
		cfg.Sources.SinaReferer = "https://finance.sina.com.cn/"
	}
	if cfg.Sources.HTTPTimeoutS == 0 {
		cfg.Sources.HTTPTimeoutS = 30
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "data/gold-ledger.db"
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 8080
	}
	if cfg.Auth.TokenTTL == "" {
		cfg.Auth.TokenTTL = "168h"
	}
	if cfg.News.URL == "" {
		cfg.News.URL = "https://newsapi.org/v2/everything"
	}
	if cfg.News.PageSize == 0 {
		cfg.News.PageSize = 10
	}
	if cfg.DeepSeek.Model == "" {
		cfg.DeepSeek.Model = "deepseek-chat"
	}
	if cfg.DeepSeek.BaseURL == "" {
		cfg.DeepSeek.BaseURL = "https://api.deepseek.com/v1"
	}
	if cfg.DeepSeek.TimeoutSeconds == 0 {
		cfg.DeepSeek.TimeoutSeconds = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func (c *Config) Validate() error {
	for name, v := range map[string]string{
		"price.cache_ttl":        c.Price.CacheTTL,
		"price.source_timeout":   c.Price.SourceTimeout,
		"price.refresh_interval": c.Price.RefreshInterval,
		"auth.token_ttl":         c.Auth.TokenTTL,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if c.CacheTTL() == 0 {
		return fmt.Errorf("price.cache_ttl must be positive")
	}
	if c.SourceTimeout() == 0 {
		return fmt.Errorf("price.source_timeout must be positive")
	}
	if c.Price.BaselineCNY <= 0 {
		return fmt.Errorf("price.baseline_cny must be positive")
	}
	if c.Price.SyntheticBand < 0 || c.Price.SyntheticBand >= c.Price.BaselineCNY {
		return fmt.Errorf("price.synthetic_band must be in [0, baseline_cny)")
	}
	if c.Price.AssumedUSDCNY <= 0 {
		return fmt.Errorf("price.assumed_usdcny must be positive")
	}
	seen := make(map[string]bool, len(c.Sources.Order))
	for _, name := range c.Sources.Order {
		if name != SourceJin10 && name != SourceSina {
			return fmt.Errorf("unknown price source %q", name)
		}
		if seen[name] {
			return fmt.Errorf("price source %q listed twice", name)
		}
		seen[name] = true
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

func (c *Config) CacheTTL() time.Duration {
	d, _ := time.ParseDuration(c.Price.CacheTTL)
	return d
}

func (c *Config) SourceTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Price.SourceTimeout)
	return d
}

func (c *Config) RefreshInterval() time.Duration {
	d, _ := time.ParseDuration(c.Price.RefreshInterval)
	return d
}

func (c *Config) TokenTTL() time.Duration {
	d, _ := time.ParseDuration(c.Auth.TokenTTL)
	return d
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Sources.HTTPTimeoutS) * time.Second
}

func (c *Config) DeepSeekTimeout() time.Duration {
	return time.Duration(c.DeepSeek.TimeoutSeconds) * time.Second
}

func (c *Config) DeepSeekEnabled() bool {
	return c.DeepSeek.APIKey != ""
}

func (c *Config) AdminEnabled() bool {
	return c.Auth.AdminKey != ""
}

func (c *Config) Baseline() decimal.Decimal {
	return decimal.NewFromFloat(c.Price.BaselineCNY)
}

func (c *Config) AssumedUSDCNY() decimal.Decimal {
	return decimal.NewFromFloat(c.Price.AssumedUSDCNY)
}
