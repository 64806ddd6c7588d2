package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/cryptodash/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Journal JournalConfig `mapstructure:"journal"`
	Storage StorageConfig `mapstructure:"storage"`
	Market  MarketConfig  `mapstructure:"market"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

// Addr is the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// JournalConfig controls how the journal is interpreted.
type JournalConfig struct {
	// Timezone used for calendar days and weekdays, "Local" or an IANA name.
	Timezone string `mapstructure:"timezone"`
	SeedDemo bool   `mapstructure:"seed_demo"`
}

// Location resolves Timezone.
func (j JournalConfig) Location() (*time.Location, error) {
	if j.Timezone == "" || strings.EqualFold(j.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(j.Timezone)
}

type StorageConfig struct {
	Journal JournalStoreConfig `mapstructure:"journal"`
	Archive ArchiveConfig      `mapstructure:"archive"`
}

type JournalStoreConfig struct {
	Driver string `mapstructure:"driver"` // "memory" or "sqlite"
	DSN    string `mapstructure:"dsn"`
}

type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MarketConfig holds market overview polling settings.
type MarketConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Symbols         []string      `mapstructure:"symbols"`
	Providers       []string      `mapstructure:"providers"`
	DefaultQuote    string        `mapstructure:"default_quote"`
	CoinGeckoAPIKey string        `mapstructure:"coingecko_api_key"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	SentimentURL    string        `mapstructure:"sentiment_url"`

	// Headlines are shown only when a token is set.
	CryptoPanicToken string `mapstructure:"cryptopanic_token"`
	NewsURL          string `mapstructure:"news_url"`
	// Empty disables the economic calendar.
	CalendarURL string `mapstructure:"calendar_url"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file on top of Defaults. An empty path
// loads defaults and environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Journal: JournalConfig{
			Timezone: "Local",
		},
		Storage: StorageConfig{
			Journal: JournalStoreConfig{
				Driver: "sqlite",
				DSN:    "./data/journal.db",
			},
			Archive: ArchiveConfig{
				Type: "localfs",
				Path: "./data/archive",
			},
		},
		Market: MarketConfig{
			Enabled:      true,
			Symbols:      []string{"BTC", "ETH", "SOL"},
			Providers:    []string{"binance", "coingecko"},
			DefaultQuote: "USDT",
			PollInterval: time.Minute,
			SentimentURL: "https://api.alternative.me/fng/?limit=1",
			NewsURL:      "https://cryptopanic.com/api/v1/posts/",
			CalendarURL:  "https://api.tradingeconomics.com/calendar?c=guest:guest&format=json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// setDefaults registers every default with viper so AutomaticEnv can
// override keys absent from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.api_key", d.Server.APIKey)
	v.SetDefault("journal.timezone", d.Journal.Timezone)
	v.SetDefault("journal.seed_demo", d.Journal.SeedDemo)
	v.SetDefault("storage.journal.driver", d.Storage.Journal.Driver)
	v.SetDefault("storage.journal.dsn", d.Storage.Journal.DSN)
	v.SetDefault("storage.archive.type", d.Storage.Archive.Type)
	v.SetDefault("storage.archive.path", d.Storage.Archive.Path)
	v.SetDefault("storage.archive.s3.bucket", "")
	v.SetDefault("storage.archive.s3.endpoint", "")
	v.SetDefault("storage.archive.s3.region", "")
	v.SetDefault("storage.archive.s3.access_key", "")
	v.SetDefault("storage.archive.s3.secret_key", "")
	v.SetDefault("storage.archive.s3.prefix", "")
	v.SetDefault("market.enabled", d.Market.Enabled)
	v.SetDefault("market.symbols", d.Market.Symbols)
	v.SetDefault("market.providers", d.Market.Providers)
	v.SetDefault("market.default_quote", d.Market.DefaultQuote)
	v.SetDefault("market.coingecko_api_key", d.Market.CoinGeckoAPIKey)
	v.SetDefault("market.poll_interval", d.Market.PollInterval)
	v.SetDefault("market.sentiment_url", d.Market.SentimentURL)
	v.SetDefault("market.cryptopanic_token", d.Market.CryptoPanicToken)
	v.SetDefault("market.news_url", d.Market.NewsURL)
	v.SetDefault("market.calendar_url", d.Market.CalendarURL)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if _, err := c.Journal.Location(); err != nil {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("journal timezone %q: %w", c.Journal.Timezone, err))
	}

	// Storage validation
	switch c.Storage.Journal.Driver {
	case "", "memory":
	case "sqlite":
		if c.Storage.Journal.DSN == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage.journal.dsn required when driver is sqlite"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown journal driver %q", c.Storage.Journal.Driver))
	}

	switch c.Storage.Archive.Type {
	case "", "localfs":
	case "s3":
		if c.Storage.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage.archive.s3.bucket required when type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type %q", c.Storage.Archive.Type))
	}

	// Market validation
	if c.Market.Enabled {
		if c.Market.PollInterval < 5*time.Second {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("market.poll_interval must be at least 5s, got %s", c.Market.PollInterval))
		}
		for _, p := range c.Market.Providers {
			if p != "binance" && p != "coingecko" {
				return core.WrapError(core.ErrConfigInvalid,
					fmt.Errorf("unknown market provider %q", p))
			}
		}
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path))
	}

	return nil
}
