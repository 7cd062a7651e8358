package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application-wide configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Push     PushConfig     `mapstructure:"push"`
	Routing  RoutingConfig  `mapstructure:"routing"`
	Holidays HolidayConfig  `mapstructure:"holidays"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port      int        `mapstructure:"port"`
	BaseURL   string     `mapstructure:"base_url"`
	BodyLimit int64      `mapstructure:"body_limit"` // bytes
	CORS      CORSConfig `mapstructure:"cors"`
}

// CORSConfig cross-origin settings
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL settings
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// DSN builds the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT settings
type AuthConfig struct {
	JWTSecret               string        `mapstructure:"jwt_secret"`
	AccessTokenTTL          time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL         time.Duration `mapstructure:"refresh_token_ttl"`
	RefreshTokenTTLRemember time.Duration `mapstructure:"refresh_token_ttl_remember_me"`
	// ServiceKey authenticates the ops CLI when it calls privileged code paths.
	ServiceKey string `mapstructure:"service_key"`
}

// LogConfig logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PushConfig push delivery settings
type PushConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Endpoint    string        `mapstructure:"endpoint"`
	AccessToken string        `mapstructure:"access_token"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// RoutingConfig travel-time provider settings
type RoutingConfig struct {
	Provider        string        `mapstructure:"provider"` // haversine | distance_matrix
	APIKey          string        `mapstructure:"api_key"`
	Endpoint        string        `mapstructure:"endpoint"`
	AverageSpeedKMH float64       `mapstructure:"average_speed_kmh"`
	RatePerSecond   float64       `mapstructure:"rate_per_second"`
	Concurrency     int           `mapstructure:"concurrency"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// HolidayConfig holiday calendar settings
type HolidayConfig struct {
	DefaultRegion string `mapstructure:"default_region"`
	ICSURL        string `mapstructure:"ics_url"`
}

// Load reads configuration from defaults, the config file and the environment.
// Precedence: environment > config file > defaults. A local .env file is
// loaded into the environment first without overriding variables already set.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// ── defaults ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.body_limit", 5<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:3000"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "sad")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Europe/Madrid")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.refresh_token_ttl", "24h")
	v.SetDefault("auth.refresh_token_ttl_remember_me", "720h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("push.enabled", false)
	v.SetDefault("push.endpoint", "https://exp.host/--/api/v2/push/send")
	v.SetDefault("push.timeout", "10s")

	v.SetDefault("routing.provider", "haversine")
	v.SetDefault("routing.endpoint", "https://maps.googleapis.com/maps/api/distancematrix/json")
	v.SetDefault("routing.average_speed_kmh", 30.0)
	v.SetDefault("routing.rate_per_second", 5.0)
	v.SetDefault("routing.concurrency", 4)
	v.SetDefault("routing.cache_ttl", "168h")
	v.SetDefault("routing.timeout", "10s")

	v.SetDefault("holidays.default_region", "ES-CT")

	// ── config file ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── environment ──
	v.SetEnvPrefix("SAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
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

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("invalid config: auth.jwt_secret is required")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("invalid config: auth.jwt_secret must be at least 16 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be between 1 and 65535")
	}
	switch c.Routing.Provider {
	case "haversine":
	case "distance_matrix":
		if c.Routing.APIKey == "" {
			return fmt.Errorf("invalid config: routing.api_key is required for the distance_matrix provider")
		}
	default:
		return fmt.Errorf("invalid config: unknown routing.provider %q", c.Routing.Provider)
	}
	return nil
}
