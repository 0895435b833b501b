package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log        Logger           `mapstructure:"logger"`
	DB         Database         `mapstructure:"database"`
	API        API              `mapstructure:"api"`
	Scheduler  Scheduler        `mapstructure:"scheduler"`
	MarketData MarketDataConfig `mapstructure:"marketdata"`
	Email      EmailConfig      `mapstructure:"email"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	OAuth      OAuthConfig      `mapstructure:"oauth"`
	Cache      Cache            `mapstructure:"cache"`
	EventStore EventStoreConfig `mapstructure:"eventstore"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port int `mapstructure:"port"`
	// Directory with the built dashboard SPA. Served when it exists.
	FrontendDir string `mapstructure:"frontend_dir"`
}

type Scheduler struct {
	MorningTime string `mapstructure:"morning_time"` // HH:MM
	EveningTime string `mapstructure:"evening_time"` // HH:MM
	Timezone    string `mapstructure:"timezone"`
	// Tips and market data older than this are purged nightly. Zero
	// disables the purge.
	RetentionDays int `mapstructure:"retention_days"`
}

type MarketDataConfig struct {
	CoinGeckoBaseURL    string        `mapstructure:"coingecko_base_url"`
	AlphaVantageBaseURL string        `mapstructure:"alphavantage_base_url"`
	AlphaVantageAPIKey  string        `mapstructure:"alphavantage_api_key"`
	CryptoSymbols       []string      `mapstructure:"crypto_symbols"`
	StockSymbols        []string      `mapstructure:"stock_symbols"`
	HistoricalPeriod    string        `mapstructure:"historical_period"` // 24h, 7d or 30d
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMin    int           `mapstructure:"max_request_per_min"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
}

type EmailConfig struct {
	Transport      string          `mapstructure:"transport"` // smtp or mailgun
	SMTPHost       string          `mapstructure:"smtp_host"`
	SMTPPort       int             `mapstructure:"smtp_port"`
	SenderEmail    string          `mapstructure:"sender_email"`
	SenderPassword string          `mapstructure:"sender_password"`
	MailgunDomain  string          `mapstructure:"mailgun_domain"`
	MailgunAPIKey  string          `mapstructure:"mailgun_api_key"`
	Recipients     []string        `mapstructure:"recipients"`
	RetryDelays    []time.Duration `mapstructure:"retry_delays"`
}

type JWTConfig struct {
	SecretKey          string        `mapstructure:"secret_key"`
	AccessTokenExpire  time.Duration `mapstructure:"access_token_expire"`
	RefreshTokenExpire time.Duration `mapstructure:"refresh_token_expire"`
}

type OAuthProvider struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

type OAuthConfig struct {
	Google OAuthProvider `mapstructure:"google"`
	GitHub OAuthProvider `mapstructure:"github"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type EventStoreConfig struct {
	MaxSize int           `mapstructure:"max_size"`
	MaxAge  time.Duration `mapstructure:"max_age"`
}

func Load() (*Config, error) {
	// .env is optional, plain env vars win either way.
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")

	viper.SetDefault("api.port", 8000)
	viper.SetDefault("api.frontend_dir", "frontend/dist")

	viper.SetDefault("scheduler.morning_time", "06:00")
	viper.SetDefault("scheduler.evening_time", "18:00")
	viper.SetDefault("scheduler.timezone", "UTC")
	viper.SetDefault("scheduler.retention_days", 90)

	viper.SetDefault("marketdata.coingecko_base_url", "https://api.coingecko.com/api/v3")
	viper.SetDefault("marketdata.alphavantage_base_url", "https://www.alphavantage.co")
	viper.SetDefault("marketdata.crypto_symbols", []string{"bitcoin", "ethereum"})
	viper.SetDefault("marketdata.stock_symbols", []string{"AAPL", "GOOGL"})
	viper.SetDefault("marketdata.historical_period", "30d")
	viper.SetDefault("marketdata.timeout", 10*time.Second)
	viper.SetDefault("marketdata.max_request_per_min", 30)
	viper.SetDefault("marketdata.cache_ttl", 5*time.Minute)

	viper.SetDefault("email.transport", "smtp")
	viper.SetDefault("email.smtp_host", "smtp.gmail.com")
	viper.SetDefault("email.smtp_port", 587)
	viper.SetDefault("email.retry_delays", []time.Duration{5 * time.Minute, 15 * time.Minute, 30 * time.Minute})

	viper.SetDefault("jwt.access_token_expire", 15*time.Minute)
	viper.SetDefault("jwt.refresh_token_expire", 7*24*time.Hour)

	viper.SetDefault("cache.default_expiration", 5*time.Minute)
	viper.SetDefault("cache.cleanup_interval", 10*time.Minute)

	viper.SetDefault("eventstore.max_size", 10000)
	viper.SetDefault("eventstore.max_age", time.Hour)
}

// Validate checks the parts of the config without safe defaults.
func (c *Config) Validate() error {
	if c.Email.SenderEmail == "" {
		return fmt.Errorf("email.sender_email is required")
	}
	if len(c.Email.Recipients) == 0 {
		return fmt.Errorf("email.recipients must not be empty")
	}
	if c.Email.Transport == "smtp" && c.Email.SenderPassword == "" {
		return fmt.Errorf("email.sender_password is required for the smtp transport")
	}
	if c.JWT.SecretKey == "" {
		return fmt.Errorf("jwt.secret_key is required")
	}
	if len(c.Email.RetryDelays) == 0 {
		return fmt.Errorf("email.retry_delays must not be empty")
	}
	return nil
}
