package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Log        LogConfig        `mapstructure:"log"`
	Market     MarketConfig     `mapstructure:"market"`
	Settlement SettlementConfig `mapstructure:"settlement"`
	Trading    TradingConfig    `mapstructure:"trading"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	AML        AMLConfig        `mapstructure:"aml"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type NATSConfig struct {
	URL           string `mapstructure:"url"`
	Stream        string `mapstructure:"stream"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type KafkaConfig struct {
	Brokers            []string `mapstructure:"brokers"`
	NotificationsTopic string   `mapstructure:"notifications_topic"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

type MarketConfig struct {
	MaxAge   time.Duration `mapstructure:"max_age"`
	FeedURL  string        `mapstructure:"feed_url"`
	Simulate bool          `mapstructure:"simulate"` // random-walk feed instead of FeedURL
}

type SettlementConfig struct {
	LockTTL           time.Duration `mapstructure:"lock_ttl"`
	DefaultPayoutRate float64       `mapstructure:"default_payout_rate"`
	MinPayoutRate     float64       `mapstructure:"min_payout_rate"`
	MaxPayoutRate     float64       `mapstructure:"max_payout_rate"`
	RequireFreshPrice bool          `mapstructure:"require_fresh_price"`
}

type TradingConfig struct {
	MarginRequirement float64 `mapstructure:"margin_requirement"` // fraction of notional that must be covered by balance
}

type SchedulerConfig struct {
	Queue             string        `mapstructure:"queue"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	BackoffBase       time.Duration `mapstructure:"backoff_base"`
	Concurrency       int           `mapstructure:"concurrency"`
	RateLimit         float64       `mapstructure:"rate_limit"` // job starts per second
	RateBurst         int           `mapstructure:"rate_burst"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
	SweepBatch        int           `mapstructure:"sweep_batch"`
	AttemptTimeout    time.Duration `mapstructure:"attempt_timeout"`
	VisibilityTimeout time.Duration `mapstructure:"visibility_timeout"`
}

type AMLConfig struct {
	VelocityThreshold   int64         `mapstructure:"velocity_threshold"`
	MaxDailyDeposits    float64       `mapstructure:"max_daily_deposits"`
	MaxTradesPerHour    int64         `mapstructure:"max_trades_per_hour"`
	MaxDailyTradeVolume float64       `mapstructure:"max_daily_trade_volume"`
	ScanInterval        time.Duration `mapstructure:"scan_interval"`
	ScanBatch           int           `mapstructure:"scan_batch"`
	ScansPerSecond      float64       `mapstructure:"scans_per_second"`
	ActivityWindow      time.Duration `mapstructure:"activity_window"`
}

// RateLimitConfig holds per-minute request budgets per route group.
type RateLimitConfig struct {
	Enabled bool  `mapstructure:"enabled"`
	API     int64 `mapstructure:"api"`
	Binary  int64 `mapstructure:"binary"`
	Trading int64 `mapstructure:"trading"`
	Admin   int64 `mapstructure:"admin"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: STL_.
// Nested keys use underscore: STL_DATABASE_HOST, STL_SETTLEMENT_LOCK_TTL, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "settlement")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.stream", "SETTLEMENT_EVENTS")
	v.SetDefault("nats.subject_prefix", "settlement.events")
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.notifications_topic", "notifications")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "settlement-core")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("market.max_age", "60s")
	v.SetDefault("market.feed_url", "")
	v.SetDefault("market.simulate", true)
	v.SetDefault("settlement.lock_ttl", "10s")
	v.SetDefault("settlement.default_payout_rate", 0.85)
	v.SetDefault("settlement.min_payout_rate", 0.70)
	v.SetDefault("settlement.max_payout_rate", 0.95)
	v.SetDefault("settlement.require_fresh_price", true)
	v.SetDefault("trading.margin_requirement", 0.10)
	v.SetDefault("scheduler.queue", "binary-resolution")
	v.SetDefault("scheduler.max_attempts", 3)
	v.SetDefault("scheduler.backoff_base", "2s")
	v.SetDefault("scheduler.concurrency", 10)
	v.SetDefault("scheduler.rate_limit", 50)
	v.SetDefault("scheduler.rate_burst", 50)
	v.SetDefault("scheduler.poll_interval", "500ms")
	v.SetDefault("scheduler.sweep_interval", "10s")
	v.SetDefault("scheduler.sweep_batch", 500)
	v.SetDefault("scheduler.attempt_timeout", "15s")
	v.SetDefault("scheduler.visibility_timeout", "60s")
	v.SetDefault("aml.velocity_threshold", 10)
	v.SetDefault("aml.max_daily_deposits", 50000)
	v.SetDefault("aml.max_trades_per_hour", 100)
	v.SetDefault("aml.max_daily_trade_volume", 500000)
	v.SetDefault("aml.scan_interval", "60s")
	v.SetDefault("aml.scan_batch", 200)
	v.SetDefault("aml.scans_per_second", 20)
	v.SetDefault("aml.activity_window", "24h")
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.api", 100)
	v.SetDefault("rate_limit.binary", 30)
	v.SetDefault("rate_limit.trading", 20)
	v.SetDefault("rate_limit.admin", 50)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: STL_DATABASE_HOST -> database.host
	v.SetEnvPrefix("STL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; env vars can suffice.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Settlement.MinPayoutRate > cfg.Settlement.MaxPayoutRate {
		return nil, fmt.Errorf("settlement.min_payout_rate %.2f exceeds max_payout_rate %.2f",
			cfg.Settlement.MinPayoutRate, cfg.Settlement.MaxPayoutRate)
	}

	return &cfg, nil
}
