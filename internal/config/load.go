package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load, so
// server.port is read from VOLUNTEER_SERVER_PORT.
const EnvPrefix = "VOLUNTEER"

// keys lists every setting so environment variables are seen even when
// neither a default nor a config file mentions them.
var keys = []string{
	"server.port",
	"server.log_level",
	"server.origin",
	"server.input_error_status",
	"server.max_body_bytes",
	"server.shutdown_timeout",
	"database.url",
	"database.max_open_conns",
	"database.max_idle_conns",
	"database.conn_max_lifetime",
	"auth.jwt_secret",
	"auth.cookie_name",
	"auth.clock_skew",
	"auth.token_lifetime",
	"tracing.enabled",
	"tracing.service_name",
	"tracing.endpoint",
	"tracing.insecure",
	"tracing.sample_rate",
	"tracing.batch_timeout",
}

// Load reads configuration from an optional config.yaml in the working
// directory and from environment variables, which take precedence.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. Unlike the implicit
// config.yaml, an explicit file must exist.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.input_error_status", 500)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("auth.cookie_name", "volunteer_session")
	v.SetDefault("auth.clock_skew", 30*time.Second)
	v.SetDefault("auth.token_lifetime", 12*time.Hour)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "volunteer-api")
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.sample_rate", 1.0)
	v.SetDefault("tracing.batch_timeout", 5*time.Second)
}
