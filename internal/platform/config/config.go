// Package config carga la configuración del servicio desde config.yml (opcional) y env.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppName   string `mapstructure:"APP_NAME"`
	Port      string `mapstructure:"PORT"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Vacío => repos in-memory.
	DBDSN     string `mapstructure:"DB_DSN"`
	DBMigrate bool   `mapstructure:"DB_MIGRATE"`

	// Vacío => modo dev con X-Debug-User-ID.
	AuthBaseURL string        `mapstructure:"AUTH_BASE_URL"`
	AuthAPIKey  string        `mapstructure:"AUTH_API_KEY"`
	AuthTimeout time.Duration `mapstructure:"AUTH_TIMEOUT"`

	// Vacío => tracing deshabilitado.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	AdoptionRatePerMinute int `mapstructure:"ADOPTION_RATE_PER_MINUTE"`
	AdoptionRateBurst     int `mapstructure:"ADOPTION_RATE_BURST"`

	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var keys = []string{
	"APP_NAME", "PORT", "LOG_LEVEL", "LOG_FORMAT",
	"DB_DSN", "DB_MIGRATE",
	"AUTH_BASE_URL", "AUTH_API_KEY", "AUTH_TIMEOUT",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
	"ADOPTION_RATE_PER_MINUTE", "ADOPTION_RATE_BURST",
	"SHUTDOWN_TIMEOUT",
}

// Load lee config.yml desde los paths indicados (por defecto "."), y env encima.
func Load(paths ...string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.AutomaticEnv()
	// Unmarshal solo ve env de keys conocidas.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetDefault("APP_NAME", "pet-adoption")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("DB_MIGRATE", true)
	v.SetDefault("AUTH_TIMEOUT", 5*time.Second)
	v.SetDefault("ADOPTION_RATE_PER_MINUTE", 10)
	v.SetDefault("ADOPTION_RATE_BURST", 5)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT is required")
	}
	if c.AuthBaseURL != "" && c.AuthAPIKey == "" {
		return errors.New("AUTH_API_KEY is required when AUTH_BASE_URL is set")
	}
	if c.AdoptionRatePerMinute < 0 || c.AdoptionRateBurst < 0 {
		return errors.New("adoption rate limits must be >= 0")
	}
	return nil
}

// DevAuth indica si no hay IAM configurado y se acepta X-Debug-User-ID.
func (c *Config) DevAuth() bool {
	return strings.TrimSpace(c.AuthBaseURL) == ""
}
