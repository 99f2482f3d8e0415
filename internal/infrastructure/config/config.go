// Package config loads the storefront settings from config.toml and
// SHOPFLUX_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces the environment overrides: database.password is
// read from SHOPFLUX_DATABASE_PASSWORD.
const EnvPrefix = "SHOPFLUX"

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Log        LogConfig        `mapstructure:"log"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Storefront StorefrontConfig `mapstructure:"storefront"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Swagger    SwaggerConfig    `mapstructure:"swagger"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Profiler   ProfilerConfig   `mapstructure:"profiler"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// DSN is a postgres:// URL with user and password escaped.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// RedisConfig points at the shared key store. With no Host the process
// keeps its keys in memory.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Enabled() bool { return r.Host != "" }

func (r RedisConfig) Addr() string { return net.JoinHostPort(r.Host, strconv.Itoa(r.Port)) }

// JWTConfig verifies the identity provider's HS256 tokens. The expiration
// only applies to tokens this service mints itself, in tests and tooling.
type JWTConfig struct {
	Secret                string        `mapstructure:"secret"`
	Issuer                string        `mapstructure:"issuer"`
	AccessTokenExpiration time.Duration `mapstructure:"access_token_expiration"`
}

type HTTPConfig struct {
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"`
	MaxBodySize       int64         `mapstructure:"max_body_size"`
	RateLimitEnabled  bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
	// No origins means no cross-origin access; there is no wildcard default.
	CORSAllowOrigins []string `mapstructure:"cors_allow_origins"`
	CORSAllowMethods []string `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders []string `mapstructure:"cors_allow_headers"`
	TrustedProxies   []string `mapstructure:"trusted_proxies"`
}

// StorefrontConfig tunes catalog listing and cart behavior.
type StorefrontConfig struct {
	FeaturedLimit      int           `mapstructure:"featured_limit"`
	DefaultPageSize    int           `mapstructure:"default_page_size"`
	MaxPageSize        int           `mapstructure:"max_page_size"`
	PlaceholderImage   string        `mapstructure:"placeholder_image"`
	Currency           string        `mapstructure:"currency"`
	CartIdempotencyTTL time.Duration `mapstructure:"cart_idempotency_ttl"`
	MaxCartQuantity    int           `mapstructure:"max_cart_quantity"`
}

// StorageConfig locates product images in an S3-compatible bucket. Without
// a Bucket, stored image references are joined to PublicBaseURL instead.
type StorageConfig struct {
	Bucket            string        `mapstructure:"bucket"`
	Region            string        `mapstructure:"region"`
	Endpoint          string        `mapstructure:"endpoint"` // MinIO and friends; empty for AWS
	AccessKey         string        `mapstructure:"access_key"`
	SecretKey         string        `mapstructure:"secret_key"`
	UsePathStyle      bool          `mapstructure:"use_path_style"`
	PresignExpiration time.Duration `mapstructure:"presign_expiration"`
	PublicBaseURL     string        `mapstructure:"public_base_url"`
}

func (s StorageConfig) Enabled() bool { return s.Bucket != "" }

type SwaggerConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	RequireAuth bool     `mapstructure:"require_auth"`
	AllowedIPs  []string `mapstructure:"allowed_ips"` // addresses or CIDRs; empty allows everyone
}

type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"` // OTLP gRPC host:port
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"`
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
	LogsEnabled       bool          `mapstructure:"logs_enabled"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`
}

// ProfilerConfig drives Pyroscope continuous profiling.
type ProfilerConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	ServerAddress     string `mapstructure:"server_address"`
	ApplicationName   string `mapstructure:"application_name"`
	BasicAuthUser     string `mapstructure:"basic_auth_user"`
	BasicAuthPassword string `mapstructure:"basic_auth_password"`
}

// defaults lists every key Load understands. A key missing here is
// invisible to environment overrides, so secrets are listed empty.
var defaults = map[string]any{
	"app.name": "shopflux-storefront",
	"app.env":  "development",
	"app.port": "8080",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "shopflux",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.host":     "",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"jwt.secret":                  "",
	"jwt.issuer":                  "shopflux",
	"jwt.access_token_expiration": time.Hour,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":        15 * time.Second,
	"http.write_timeout":       15 * time.Second,
	"http.idle_timeout":        time.Minute,
	"http.max_header_bytes":    1 << 20,
	"http.max_body_size":       1 << 20,
	"http.rate_limit_enabled":  false,
	"http.rate_limit_requests": 300,
	"http.rate_limit_window":   time.Minute,
	"http.cors_allow_origins":  []string{},
	"http.cors_allow_methods":  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	"http.cors_allow_headers":  []string{"Content-Type", "Authorization", "X-Request-ID", "Idempotency-Key"},
	"http.trusted_proxies":     []string{},

	"storefront.featured_limit":       8,
	"storefront.default_page_size":    20,
	"storefront.max_page_size":        100,
	"storefront.placeholder_image":    "/placeholder.svg",
	"storefront.currency":             "USD",
	"storefront.cart_idempotency_ttl": 24 * time.Hour,
	"storefront.max_cart_quantity":    99,

	"storage.bucket":             "",
	"storage.region":             "us-east-1",
	"storage.endpoint":           "",
	"storage.access_key":         "",
	"storage.secret_key":         "",
	"storage.use_path_style":     false,
	"storage.presign_expiration": time.Hour,
	"storage.public_base_url":    "",

	"swagger.enabled":      false,
	"swagger.require_auth": false,
	"swagger.allowed_ips":  []string{},

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "",
	"telemetry.insecure":                false,
	"telemetry.metrics_enabled":         false,
	"telemetry.metrics_interval":        15 * time.Second,
	"telemetry.logs_enabled":            false,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,

	"profiler.enabled":             false,
	"profiler.server_address":      "",
	"profiler.application_name":    "",
	"profiler.basic_auth_user":     "",
	"profiler.basic_auth_password": "",
}

// Load resolves the configuration. Later sources win:
//
//  1. the defaults above
//  2. config.toml from ., ./config or /app, or the file named by SHOPFLUX_CONFIG
//  3. SHOPFLUX_* environment variables
//
// A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if file := os.Getenv(EnvPrefix + "_CONFIG"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Profiler.ApplicationName == "" {
		cfg.Profiler.ApplicationName = cfg.App.Name
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool { return c.App.Env == "production" }

// validate reports every problem at once.
func (c *Config) validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	db := c.Database
	check(db.MaxOpenConns > 0, "database.max_open_conns must be positive")
	check(db.MaxIdleConns >= 0, "database.max_idle_conns cannot be negative")
	check(db.MaxIdleConns <= db.MaxOpenConns,
		"database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)", db.MaxIdleConns, db.MaxOpenConns)

	sf := c.Storefront
	check(sf.DefaultPageSize <= sf.MaxPageSize,
		"storefront.default_page_size (%d) cannot exceed storefront.max_page_size (%d)", sf.DefaultPageSize, sf.MaxPageSize)
	check(sf.FeaturedLimit >= 0 && sf.MaxCartQuantity >= 0, "storefront limits cannot be negative")
	check(len(sf.Currency) == 3, "storefront.currency must be a 3-letter ISO code, got %q", sf.Currency)

	ratio := c.Telemetry.SamplingRatio
	check(ratio >= 0 && ratio <= 1, "telemetry.sampling_ratio must be between 0.0 and 1.0, got %g", ratio)

	if c.IsProduction() {
		check(c.JWT.Secret != "", "jwt.secret is required in production")
		check(c.JWT.Secret == "" || len(c.JWT.Secret) >= 32, "jwt.secret must be at least 32 characters in production")
		check(db.Password != "", "database.password is required in production")
		check(db.SSLMode != "disable", "database.sslmode cannot be 'disable' in production")
		check(!slices.Contains(c.HTTP.CORSAllowOrigins, "*"), "http.cors_allow_origins cannot be '*' in production")
		check(!c.Swagger.Enabled || len(c.Swagger.AllowedIPs) > 0,
			"swagger endpoint must be disabled or IP restricted in production")
		check(!c.Telemetry.DBLogFullSQL, "telemetry.db_log_full_sql must be false in production")
	}

	return errors.Join(errs...)
}
