// Package config loads the service configuration from defaults, an
// optional YAML file, a .env file and RENTFLOW_* environment variables,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	strutil "rentflow/pkg/platform/strings"
)

// EnvPrefix is prepended to every environment override, e.g.
// RENTFLOW_SERVER_ADDR or RENTFLOW_LIMITS_MAX_TENANTS_PER_OFFER.
const EnvPrefix = "RENTFLOW"

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Kafka       KafkaConfig     `mapstructure:"kafka"`
	Tracing     TracingConfig   `mapstructure:"tracing"`
	Auth        AuthConfig      `mapstructure:"auth"`
	Clock       ClockConfig     `mapstructure:"clock"`
	Limits      LimitsConfig    `mapstructure:"limits"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CommandTimeout  time.Duration `mapstructure:"command_timeout"`
}

// DatabaseConfig selects the storage backend. An empty URL runs the
// in-memory backend.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdentityTTL  time.Duration `mapstructure:"identity_ttl"`
}

type KafkaConfig struct {
	Brokers     []string `mapstructure:"brokers"`
	AuditTopic  string   `mapstructure:"audit_topic"`
	Partitions  int32    `mapstructure:"partitions"`
	Replication int16    `mapstructure:"replication"`
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type TracingConfig struct {
	// Exporter is one of "none", "stdout" or "otlp".
	Exporter    string  `mapstructure:"exporter"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	ServiceName string  `mapstructure:"service_name"`
}

type AuthConfig struct {
	JWTSigningKey string        `mapstructure:"jwt_signing_key"`
	Issuer        string        `mapstructure:"issuer"`
	Audience      string        `mapstructure:"audience"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	// Authorities are the account ids allowed to run registry commands.
	Authorities []string `mapstructure:"authorities"`
	// AdminToken guards host controls (clock, deposits).
	AdminToken string `mapstructure:"admin_token"`
}

type ClockConfig struct {
	// Mode is "manual" (advanced via the admin API) or "interval".
	Mode     string        `mapstructure:"mode"`
	Interval time.Duration `mapstructure:"interval"`
	Genesis  time.Time     `mapstructure:"genesis"`
	Start    uint64        `mapstructure:"start"`
}

type LimitsConfig struct {
	MaxTenantsPerOffer    int    `mapstructure:"max_tenants_per_offer"`
	MaxOffersPerListing   int    `mapstructure:"max_offers_per_listing"`
	MaxOffersPerApplicant int    `mapstructure:"max_offers_per_applicant"`
	ExistentialDeposit    uint64 `mapstructure:"existential_deposit"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	IdleTTL           time.Duration `mapstructure:"idle_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.command_timeout", 5*time.Second)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.identity_ttl", 10*time.Minute)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.audit_topic", "rentflow.audit")
	v.SetDefault("kafka.partitions", 3)
	v.SetDefault("kafka.replication", 1)

	v.SetDefault("tracing.exporter", "none")
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.sample_rate", 1.0)
	v.SetDefault("tracing.service_name", "rentflow")

	v.SetDefault("auth.jwt_signing_key", "dev-secret-key-change-in-production")
	v.SetDefault("auth.issuer", "rentflow")
	v.SetDefault("auth.audience", "rentflow-api")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.authorities", []string{})
	v.SetDefault("auth.admin_token", "")

	v.SetDefault("clock.mode", "manual")
	v.SetDefault("clock.interval", 6*time.Second)
	v.SetDefault("clock.start", 0)

	v.SetDefault("limits.max_tenants_per_offer", 10)
	v.SetDefault("limits.max_offers_per_listing", 20)
	v.SetDefault("limits.max_offers_per_applicant", 20)
	v.SetDefault("limits.existential_deposit", 1)

	v.SetDefault("rate_limit.requests_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)
	v.SetDefault("rate_limit.idle_ttl", 10*time.Minute)
}

// Load reads configuration. path may be empty; a missing .env is ignored.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	// AutomaticEnv does not split list values.
	if raw := v.GetString("kafka.brokers"); raw != "" && len(cfg.Kafka.Brokers) <= 1 {
		cfg.Kafka.Brokers = strutil.SplitList(raw)
	}
	if raw := v.GetString("auth.authorities"); raw != "" && len(cfg.Auth.Authorities) <= 1 {
		cfg.Auth.Authorities = strutil.SplitList(raw)
	}
	cfg.Kafka.Brokers = strutil.DedupeAndTrim(cfg.Kafka.Brokers)
	cfg.Auth.Authorities = strutil.DedupeAndTrim(cfg.Auth.Authorities)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	switch c.Clock.Mode {
	case "manual":
	case "interval":
		if c.Clock.Interval <= 0 {
			return errors.New("clock.interval must be positive in interval mode")
		}
	default:
		return fmt.Errorf("unknown clock.mode %q", c.Clock.Mode)
	}
	switch c.Tracing.Exporter {
	case "none", "stdout", "otlp":
	default:
		return fmt.Errorf("unknown tracing.exporter %q", c.Tracing.Exporter)
	}
	if c.Limits.MaxTenantsPerOffer < 1 || c.Limits.MaxOffersPerListing < 1 || c.Limits.MaxOffersPerApplicant < 1 {
		return errors.New("limits must be positive")
	}
	if c.Environment == "production" && c.Auth.JWTSigningKey == "dev-secret-key-change-in-production" {
		return errors.New("auth.jwt_signing_key must be set in production")
	}
	return nil
}

