package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// ServerConfig contains the HTTP server and dispatcher settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// Origin overrides the origin handlers see. Empty derives it per request.
	Origin string `mapstructure:"origin" validate:"omitempty,url"`
	// InputErrorStatus is written when a request payload fails validation.
	InputErrorStatus int           `mapstructure:"input_error_status" validate:"oneof=400 500"`
	MaxBodyBytes     int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains the connection settings for PostgreSQL.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// AuthConfig contains the session token settings.
type AuthConfig struct {
	JWTSecret  string `mapstructure:"jwt_secret" validate:"required,min=32"`
	CookieName string `mapstructure:"cookie_name" validate:"required"`
	// ClockSkew is the leeway allowed when checking token expiry.
	ClockSkew     time.Duration `mapstructure:"clock_skew" validate:"gte=0"`
	TokenLifetime time.Duration `mapstructure:"token_lifetime" validate:"gt=0"`
}

// TracingConfig controls span export over OTLP/gRPC. When Enabled is false
// spans are created against a no-op provider and never leave the process.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name" validate:"required"`
	// Endpoint is the collector's host:port.
	Endpoint     string        `mapstructure:"endpoint" validate:"required,hostname_port"`
	Insecure     bool          `mapstructure:"insecure"`
	SampleRate   float64       `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout" validate:"gt=0"`
}
