package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Cron      CronConfig      `mapstructure:"cron"`
	Search    SearchConfig    `mapstructure:"search"`
	Feeds     FeedsConfig     `mapstructure:"feeds"`
	Clean     CleanConfig     `mapstructure:"clean"`
	Score     ScoreConfig     `mapstructure:"score"`
	Aggregate AggregateConfig `mapstructure:"aggregate"`
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

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Pipeline string `mapstructure:"pipeline"`
}

// SearchConfig drives the keyword-search ingest source (Algolia-style API).
type SearchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	BaseURL  string        `mapstructure:"base_url"`
	Query    string        `mapstructure:"query"`
	Tags     string        `mapstructure:"tags"`
	Lookback time.Duration `mapstructure:"lookback"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// FeedsConfig drives the syndication ingest source. Feeds are re-fetched in
// full on every run; the content-derived id keeps re-ingestion a no-op.
type FeedsConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URLs    []string      `mapstructure:"urls"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CleanConfig struct {
	BatchSize  int    `mapstructure:"batch_size"`
	TargetLang string `mapstructure:"target_lang"`
}

type ScoreConfig struct {
	BatchSize int `mapstructure:"batch_size"`
}

type AggregateConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.pipeline", "@every 30m")
	v.SetDefault("search.enabled", true)
	v.SetDefault("search.base_url", "https://hn.algolia.com/api/v1")
	v.SetDefault("search.query", "electric vehicle")
	v.SetDefault("search.tags", "story,comment")
	v.SetDefault("search.lookback", "24h")
	v.SetDefault("search.timeout", "20s")
	v.SetDefault("feeds.enabled", true)
	v.SetDefault("feeds.urls", []string{})
	v.SetDefault("feeds.timeout", "30s")
	v.SetDefault("clean.batch_size", 1000)
	v.SetDefault("clean.target_lang", "en")
	v.SetDefault("score.batch_size", 1000)
	v.SetDefault("aggregate.enabled", true)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
