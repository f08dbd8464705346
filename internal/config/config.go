package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Store       StoreConfig       `mapstructure:"store"`
	DB          DBConfig          `mapstructure:"db"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Blob        BlobConfig        `mapstructure:"blob"`
	Journal     JournalConfig     `mapstructure:"journal"`
	ActivityLog ActivityLogConfig `mapstructure:"activity_log"`
	Cron        CronConfig        `mapstructure:"cron"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Notify      NotifyConfig      `mapstructure:"notify"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// StoreConfig selects the document store backend: memory, redis or postgres.
type StoreConfig struct {
	Backend         string `mapstructure:"backend"`
	KeyPrefix       string `mapstructure:"key_prefix"`
	ConflictRetries int    `mapstructure:"conflict_retries"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type BlobConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
}

// JournalConfig holds the values exposed to the core through the settings provider.
type JournalConfig struct {
	StartingPortfolioValue float64 `mapstructure:"starting_portfolio_value"`
	TargetCompletions      float64 `mapstructure:"target_completions"`
	PercentPerCompletion   float64 `mapstructure:"percent_per_completion"`
}

type ActivityLogConfig struct {
	Capacity  int           `mapstructure:"capacity"`
	Retention time.Duration `mapstructure:"retention"`
}

type CronConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	ActivityArchive string `mapstructure:"activity_archive"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type NotifyConfig struct {
	WebhookURL     string        `mapstructure:"webhook_url"`
	WebhookTimeout time.Duration `mapstructure:"webhook_timeout"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	setDefaults(v)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	cfg.Blob.Backend = strings.ToLower(strings.TrimSpace(cfg.Blob.Backend))
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)

	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.key_prefix", "tradelog:")
	v.SetDefault("store.conflict_retries", 5)

	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 2)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("blob.backend", "file")
	v.SetDefault("blob.dir", "./data/attachments")

	v.SetDefault("journal.starting_portfolio_value", 10000)
	v.SetDefault("journal.target_completions", 100)
	v.SetDefault("journal.percent_per_completion", 1.0)

	v.SetDefault("activity_log.capacity", 1000)
	v.SetDefault("activity_log.retention", "2160h")

	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.activity_archive", "0 30 3 * * *")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 10)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("notify.webhook_timeout", "5s")
}
