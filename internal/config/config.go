package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/launchwatch/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Apify    ApifyConfig    `yaml:"apify" mapstructure:"apify"`
	Telegram TelegramConfig `yaml:"telegram" mapstructure:"telegram"`
	Scan     ScanConfig     `yaml:"scan" mapstructure:"scan"`
	Poll     PollConfig     `yaml:"poll" mapstructure:"poll"`
	Filter   FilterConfig   `yaml:"filter" mapstructure:"filter"`
	Notify   NotifyConfig   `yaml:"notify" mapstructure:"notify"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Watch    WatchConfig    `yaml:"watch" mapstructure:"watch"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ApifyConfig configures the scrape-job service.
type ApifyConfig struct {
	Token        string `yaml:"token" mapstructure:"token"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	ActorID      string `yaml:"actor_id" mapstructure:"actor_id"`
	TokenInQuery bool   `yaml:"token_in_query" mapstructure:"token_in_query"`
	PageSize     int    `yaml:"page_size" mapstructure:"page_size"`
	MaxRetries   int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// TelegramConfig holds Bot API credentials and the destination chat.
type TelegramConfig struct {
	BotToken  string `yaml:"bot_token" mapstructure:"bot_token"`
	ChatID    string `yaml:"chat_id" mapstructure:"chat_id"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	ParseMode string `yaml:"parse_mode" mapstructure:"parse_mode"`
}

// ScanConfig configures the search submitted to the actor.
type ScanConfig struct {
	Keywords        []string `yaml:"keywords" mapstructure:"keywords"`
	Since           string   `yaml:"since" mapstructure:"since"`
	LookbackDays    int      `yaml:"lookback_days" mapstructure:"lookback_days"`
	MaxResults      int      `yaml:"max_results" mapstructure:"max_results"`
	Language        string   `yaml:"language" mapstructure:"language"`
	IncludeReplies  bool     `yaml:"include_replies" mapstructure:"include_replies"`
	IncludeRetweets bool     `yaml:"include_retweets" mapstructure:"include_retweets"`
}

// PollConfig configures the run status loop.
type PollConfig struct {
	Interval    time.Duration `yaml:"interval" mapstructure:"interval"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// FilterConfig holds the announcement classifier word lists.
type FilterConfig struct {
	PersonalSignals     []string `yaml:"personal_signals" mapstructure:"personal_signals"`
	AnnouncementPhrases []string `yaml:"announcement_phrases" mapstructure:"announcement_phrases"`
}

// NotifyConfig configures message batching and delivery.
type NotifyConfig struct {
	BatchSize       int           `yaml:"batch_size" mapstructure:"batch_size"`
	MaxMessageChars int           `yaml:"max_message_chars" mapstructure:"max_message_chars"`
	MinInterval     time.Duration `yaml:"min_interval" mapstructure:"min_interval"`
	Header          bool          `yaml:"header" mapstructure:"header"`
	MaxRetries      int           `yaml:"max_retries" mapstructure:"max_retries"`
}

// StoreConfig configures the run history backend.
type StoreConfig struct {
	Driver      string     `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string     `yaml:"database_url" mapstructure:"database_url"`
	Pool        PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig tunes the Postgres connection pool. Zero keeps the store default.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// WatchConfig configures scheduled scans.
type WatchConfig struct {
	Schedule string `yaml:"schedule" mapstructure:"schedule"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validation modes.
const (
	ModeScan   = "scan"
	ModeDryRun = "dry-run" // scan without delivery
	ModeNotify = "notify"
)

// secretEnv maps secret keys to the bare environment names also accepted.
var secretEnv = map[string]string{
	"apify.token":        "APIFY_TOKEN",
	"telegram.bot_token": "TELEGRAM_BOT_TOKEN",
	"telegram.chat_id":   "TELEGRAM_CHAT_ID",
}

// Load reads configuration from .env files, config.yaml and the environment.
func Load() (*Config, error) {
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, eris.Wrapf(err, "config: load %s", f)
		}
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LAUNCHWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, bare := range secretEnv {
		prefixed := "LAUNCHWATCH_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, bare); err != nil {
			return nil, eris.Wrapf(err, "config: bind %s", key)
		}
	}

	// Defaults
	v.SetDefault("apify.base_url", "https://api.apify.com/v2")
	v.SetDefault("apify.actor_id", "apify/twitter-scraper")
	v.SetDefault("apify.page_size", 1000)
	v.SetDefault("apify.max_retries", 3)
	v.SetDefault("telegram.base_url", "https://api.telegram.org")
	v.SetDefault("telegram.parse_mode", "Markdown")
	v.SetDefault("scan.keywords", DefaultKeywords)
	v.SetDefault("scan.since", "2025-07-01")
	v.SetDefault("scan.lookback_days", 0)
	v.SetDefault("scan.max_results", 600)
	v.SetDefault("scan.language", "en")
	v.SetDefault("poll.interval", 10*time.Second)
	v.SetDefault("poll.timeout", 10*time.Minute)
	v.SetDefault("poll.max_attempts", 0)
	v.SetDefault("notify.batch_size", 5)
	v.SetDefault("notify.max_message_chars", 4096)
	v.SetDefault("notify.min_interval", time.Second)
	v.SetDefault("notify.header", false)
	v.SetDefault("notify.max_retries", 3)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "launchwatch.db")
	v.SetDefault("store.pool.max_conns", 0)
	v.SetDefault("store.pool.min_conns", 0)
	v.SetDefault("watch.schedule", "@every 6h")
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

// DefaultKeywords are the searched phrases.
var DefaultKeywords = []string{
	"defi protocol",
	"dex aggregator",
	"web3 project",
	"launch",
	"IDO",
	"defi platform",
	"dex platform",
	"blockchain protocol",
	"crypto dapp",
}

// Validate checks that everything the given mode needs is present. All
// problems are reported in one error so a run aborts before any remote call.
func (c *Config) Validate(mode string) error {
	var problems []string
	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	if mode != ModeDryRun {
		check(strings.TrimSpace(c.Telegram.BotToken) != "", "telegram.bot_token (TELEGRAM_BOT_TOKEN) is required")
		check(strings.TrimSpace(c.Telegram.ChatID) != "", "telegram.chat_id (TELEGRAM_CHAT_ID) is required")
	}

	if mode == ModeScan || mode == ModeDryRun {
		check(strings.TrimSpace(c.Apify.Token) != "", "apify.token (APIFY_TOKEN) is required")
		check(c.Apify.ActorID != "", "apify.actor_id is required")
		check(len(c.Scan.Keywords) > 0, "scan.keywords must not be empty")
		check(c.Scan.MaxResults > 0, "scan.max_results must be positive")
		check(c.Scan.LookbackDays >= 0, "scan.lookback_days must not be negative")
		check(c.Poll.Interval > 0, "poll.interval must be positive")
		check(c.Poll.Timeout >= 0, "poll.timeout must not be negative")
		check(c.Poll.MaxAttempts >= 0, "poll.max_attempts must not be negative")
		check(c.Notify.BatchSize > 0, "notify.batch_size must be positive")
		check(c.Notify.MaxMessageChars > 0 && c.Notify.MaxMessageChars <= 4096,
			"notify.max_message_chars must be between 1 and 4096")
		if _, err := model.ParseSince(c.Scan.Since); err != nil {
			problems = append(problems, "scan.since must be YYYY-MM-DD")
		}
	}

	switch c.Store.Driver {
	case "sqlite", "postgres", "none":
	default:
		problems = append(problems, "store.driver must be sqlite, postgres or none")
	}
	check(c.Store.Pool.MaxConns >= 0 && c.Store.Pool.MinConns >= 0, "store.pool sizes must not be negative")

	if len(problems) > 0 {
		return eris.New("config: validation failed: " + strings.Join(problems, "; "))
	}
	return nil
}

// ResolveSince returns the search lower bound: midnight UTC of now minus
// scan.lookback_days when positive, else scan.since, else nil.
func (s ScanConfig) ResolveSince(now time.Time) (*time.Time, error) {
	if s.LookbackDays > 0 {
		y, m, d := now.UTC().AddDate(0, 0, -s.LookbackDays).Date()
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t, nil
	}
	if s.Since != "" {
		return model.ParseSince(s.Since)
	}
	return nil, nil
}

// Redacted returns a copy with secrets masked, for display.
func (c Config) Redacted() Config {
	c.Apify.Token = mask(c.Apify.Token)
	c.Telegram.BotToken = mask(c.Telegram.BotToken)
	c.Scan.Keywords = append([]string(nil), c.Scan.Keywords...)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****"
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
