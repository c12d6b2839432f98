package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds all configuration for the gateway.
// Tags use mapstructure for Viper unmarshalling.
type ServerConfig struct {
	HTTPPort      string `mapstructure:"HTTP_PORT"`
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"` // external URL provider callbacks point at
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDBName   string `mapstructure:"MONGO_DB_NAME"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogPretty     bool   `mapstructure:"LOG_PRETTY"`

	// Session handling
	SessionSecret   string `mapstructure:"SESSION_SECRET"` // keys the cookie HMAC
	SessionTTLHours int    `mapstructure:"SESSION_TTL_HOURS"`

	// Optional Redis session cache; empty address selects the in-memory cache.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// Identity provider credentials. A provider with empty values is
	// simply not offered.
	GoogleClientID       string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	FacebookClientID     string `mapstructure:"FACEBOOK_CLIENT_ID"`
	FacebookClientSecret string `mapstructure:"FACEBOOK_CLIENT_SECRET"`

	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// Tracing
	OtelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
	TracingEnabled  bool   `mapstructure:"TRACING_ENABLED"`
}

// SessionTTL returns the configured session lifetime as a duration.
func (c *ServerConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// LoadConfig reads configuration from file, environment variables, and
// defaults.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("/etc/confide/")
	v.AddConfigPath("$HOME/.confide")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "3000")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:3000")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/userDB")
	v.SetDefault("MONGO_DB_NAME", "userDB")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("SESSION_SECRET", "our-little-secret-change-me") // CHANGE IN PRODUCTION
	v.SetDefault("SESSION_TTL_HOURS", 72)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	// Env-only keys need a default registered: Unmarshal only walks keys
	// viper already knows, so without one AutomaticEnv values are dropped.
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("FACEBOOK_CLIENT_ID", "")
	v.SetDefault("FACEBOOK_CLIENT_SECRET", "")
	v.SetDefault("BCRYPT_COST", 0) // 0 selects bcrypt.DefaultCost
	v.SetDefault("OTEL_SERVICE_NAME", "confide")
	v.SetDefault("TRACING_ENABLED", false)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}
