package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"rsi_bot/internal/models"
	"rsi_bot/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configFilePathENV = "CONFIG_FILE"
	defaultConfigFile = "configs/values_local.yaml"

	ModeWebhook = "webhook"
	ModeDirect  = "direct"

	WebhookFormatText = "text"
	WebhookFormatForm = "form"
)

// Config ...
type Config struct {
	Service struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"service"`

	// webhook - только алерт в релей; direct - рыночные ордера на бирже
	Mode string `mapstructure:"mode"`

	Webhook  WebhookConfig    `mapstructure:"webhook"`
	Binance  BinanceConfig    `mapstructure:"binance"`
	Rsi      models.RsiConfig `mapstructure:"rsi"`
	Feed     FeedConfig       `mapstructure:"feed"`
	Trading  TradingConfig    `mapstructure:"trading"`
	Telegram TelegramConfig   `mapstructure:"telegram"`
	Tracing  TracingConfig    `mapstructure:"tracing"`
	Log      LogConfig        `mapstructure:"log"`

	// SeedMargin - сколько свечей сверх периода тянем на прогрев
	SeedMargin int    `mapstructure:"seed_margin"`
	AlertsFile string `mapstructure:"alerts_file"`
	DB         string `mapstructure:"db_dsn"`

	// Symbols - мониторы, которые поднимаем на старте
	Symbols []SymbolConfig `mapstructure:"symbols"`
}

type WebhookConfig struct {
	URL     string        `mapstructure:"url"`
	Format  string        `mapstructure:"format"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type BinanceConfig struct {
	APIKey    string  `mapstructure:"api_key"`
	APISecret string  `mapstructure:"api_secret"`
	RestURL   string  `mapstructure:"rest_url"`
	WSURL     string  `mapstructure:"ws_url"`
	RateLimit float64 `mapstructure:"rate_limit"` // запросов в секунду
	RateBurst int     `mapstructure:"rate_burst"`
}

type FeedConfig struct {
	ReconnectBaseDelay   time.Duration `mapstructure:"reconnect_base_delay"`
	MaxReconnectAttempts int           `mapstructure:"max_reconnect_attempts"`
	ReadTimeout          time.Duration `mapstructure:"read_timeout"`
	HandshakeTimeout     time.Duration `mapstructure:"handshake_timeout"`
}

type TradingConfig struct {
	// меньше этого в quote-валюте не покупаем
	MinQuoteBalance float64 `mapstructure:"min_quote_balance"`
}

type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

type TracingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// SymbolConfig - дефолтный монитор из конфига.
type SymbolConfig struct {
	Symbol   string                 `mapstructure:"symbol"`
	Interval string                 `mapstructure:"interval"`
	InLong   *bool                  `mapstructure:"in_long"`
	BuyLimit *float64               `mapstructure:"buy_limit"`
	Rsi      *models.RsiConfigPatch `mapstructure:"rsi"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Service.Host, c.Service.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.host", "")
	v.SetDefault("service.port", 3000)
	v.SetDefault("mode", ModeWebhook)

	v.SetDefault("webhook.url", "https://wtalerts.com/bot/custom")
	v.SetDefault("webhook.format", WebhookFormatText)
	v.SetDefault("webhook.timeout", 10*time.Second)

	v.SetDefault("binance.api_key", "")
	v.SetDefault("binance.api_secret", "")
	v.SetDefault("binance.rest_url", "https://api.binance.com")
	v.SetDefault("binance.ws_url", "wss://stream.binance.com:9443/ws")
	v.SetDefault("binance.rate_limit", 10.0)
	v.SetDefault("binance.rate_burst", 5)

	v.SetDefault("rsi.period", 7)
	v.SetDefault("rsi.entry", 65.0)
	v.SetDefault("rsi.exit", 20.0)
	v.SetDefault("seed_margin", 10)

	v.SetDefault("feed.reconnect_base_delay", 5*time.Second)
	v.SetDefault("feed.max_reconnect_attempts", 5)
	v.SetDefault("feed.read_timeout", 90*time.Second)
	v.SetDefault("feed.handshake_timeout", 10*time.Second)

	v.SetDefault("trading.min_quote_balance", 10.0)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.host", "localhost")
	v.SetDefault("tracing.port", 6831)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("alerts_file", "")
	v.SetDefault("db_dsn", "")
}

// NewConfig читает yaml из CONFIG_FILE (нет файла - живём на дефолтах),
// .env и переменные окружения: rsi.entry -> RSI_ENTRY.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = defaultConfigFile
	}
	v.SetConfigFile(configFileName)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", configFileName, err)
		}
		logger.Warn("[BOOT] config file %s not found, using defaults", configFileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeWebhook, ModeDirect:
	default:
		return fmt.Errorf("%w: unknown mode %q", models.ErrValidation, c.Mode)
	}
	switch c.Webhook.Format {
	case WebhookFormatText, WebhookFormatForm:
	default:
		return fmt.Errorf("%w: unknown webhook format %q", models.ErrValidation, c.Webhook.Format)
	}
	if err := c.Rsi.Validate(); err != nil {
		return fmt.Errorf("rsi defaults: %w", err)
	}
	if c.SeedMargin < 0 {
		return fmt.Errorf("%w: seed_margin must not be negative", models.ErrValidation)
	}
	if c.Feed.MaxReconnectAttempts < 0 {
		return fmt.Errorf("%w: feed.max_reconnect_attempts must not be negative", models.ErrValidation)
	}
	if c.Mode == ModeDirect && (c.Binance.APIKey == "" || c.Binance.APISecret == "") {
		return fmt.Errorf("%w: direct mode requires binance.api_key and binance.api_secret", models.ErrValidation)
	}
	return nil
}
