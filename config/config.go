package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log       Logger          `mapstructure:"logger"`
	DB        Database        `mapstructure:"database"`
	API       API             `mapstructure:"api"`
	Trading   Trading         `mapstructure:"trading"`
	Cache     Cache           `mapstructure:"cache"`
	Finnhub   Finnhub         `mapstructure:"finnhub"`
	Alpha     AlphaVantage    `mapstructure:"alphavantage"`
	Reddit    Reddit          `mapstructure:"reddit"`
	Edgar     Edgar           `mapstructure:"edgar"`
	Gemini    Gemini          `mapstructure:"gemini"`
	Scheduler Scheduler       `mapstructure:"scheduler"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
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
}

type Trading struct {
	StartingBalance     float64       `mapstructure:"starting_balance"`
	MaxSignalsPerRun    int           `mapstructure:"max_signals_per_run"`
	MaxTickersPerSignal int           `mapstructure:"max_tickers_per_signal"`
	TradeCooldown       time.Duration `mapstructure:"trade_cooldown"`
	MarketOpenHour      int           `mapstructure:"market_open_hour"`
	MarketCloseHour     int           `mapstructure:"market_close_hour"`
}

type Cache struct {
	DefaultExpiration  time.Duration `mapstructure:"default_expiration"`
	CleanupInterval    time.Duration `mapstructure:"cleanup_interval"`
	CurrentPriceTTL    time.Duration `mapstructure:"current_price_ttl"`
	OffHoursPriceTTL   time.Duration `mapstructure:"off_hours_price_ttl"`
	PreviousCloseTTL   time.Duration `mapstructure:"previous_close_ttl"`
	OverviewTTL        time.Duration `mapstructure:"overview_ttl"`
	AnalysisTTL        time.Duration `mapstructure:"analysis_ttl"`
	TickerDirectoryTTL time.Duration `mapstructure:"ticker_directory_ttl"`
}

type Finnhub struct {
	BaseURL             string        `mapstructure:"base_url"`
	APIKey              string        `mapstructure:"api_key"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

type AlphaVantage struct {
	BaseURL             string        `mapstructure:"base_url"`
	APIKey              string        `mapstructure:"api_key"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

type Reddit struct {
	FeedURL string        `mapstructure:"feed_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Edgar struct {
	DirectoryURL       string        `mapstructure:"directory_url"`
	SubmissionsBaseURL string        `mapstructure:"submissions_base_url"`
	ArchivesBaseURL    string        `mapstructure:"archives_base_url"`
	UserAgent          string        `mapstructure:"user_agent"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

type Gemini struct {
	APIKey              string        `mapstructure:"api_key"`
	BaseModel           string        `mapstructure:"base_model"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

type Scheduler struct {
	Enabled   bool   `mapstructure:"enabled"`
	TradeCron string `mapstructure:"trade_cron"`
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

func Load() (*Config, error) {
	// .env is optional, real deployments rely on environment variables.
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

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")
	viper.SetDefault("api.port", 8080)

	viper.SetDefault("trading.starting_balance", 10000.0)
	viper.SetDefault("trading.max_signals_per_run", 5)
	viper.SetDefault("trading.max_tickers_per_signal", 3)
	viper.SetDefault("trading.trade_cooldown", time.Hour)
	viper.SetDefault("trading.market_open_hour", 9)
	viper.SetDefault("trading.market_close_hour", 16)

	viper.SetDefault("cache.default_expiration", 5*time.Minute)
	viper.SetDefault("cache.cleanup_interval", 10*time.Minute)
	viper.SetDefault("cache.current_price_ttl", time.Hour)
	viper.SetDefault("cache.off_hours_price_ttl", 24*time.Hour)
	viper.SetDefault("cache.previous_close_ttl", 24*time.Hour)
	viper.SetDefault("cache.overview_ttl", 24*time.Hour)
	viper.SetDefault("cache.analysis_ttl", 30*24*time.Hour)
	viper.SetDefault("cache.ticker_directory_ttl", 7*24*time.Hour)

	viper.SetDefault("finnhub.base_url", "https://finnhub.io/api/v1")
	viper.SetDefault("finnhub.timeout", 15*time.Second)
	viper.SetDefault("finnhub.max_request_per_minute", 30)

	viper.SetDefault("alphavantage.base_url", "https://www.alphavantage.co")
	viper.SetDefault("alphavantage.timeout", 15*time.Second)
	viper.SetDefault("alphavantage.max_request_per_minute", 5)

	viper.SetDefault("reddit.feed_url", "https://www.reddit.com/r/wallstreetbets/search.rss?q=flair_name:%22DD%22&restrict_sr=1&sort=new")
	viper.SetDefault("reddit.timeout", 15*time.Second)

	viper.SetDefault("edgar.directory_url", "https://www.sec.gov/files/company_tickers.json")
	viper.SetDefault("edgar.submissions_base_url", "https://data.sec.gov")
	viper.SetDefault("edgar.archives_base_url", "https://www.sec.gov")
	viper.SetDefault("edgar.timeout", 30*time.Second)

	viper.SetDefault("gemini.base_model", "gemini-2.0-flash")
	viper.SetDefault("gemini.timeout", 2*time.Minute)
	viper.SetDefault("gemini.max_request_per_minute", 10)

	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.trade_cron", "0 */4 * * *")
}
