package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Worker   WorkerConfig   `mapstructure:"worker"   validate:"required"`
	Monitor  MonitorConfig  `mapstructure:"monitor"  validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Host     string `mapstructure:"host"      validate:"required"`
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains the durable mirror connection settings. An
// empty URL disables the mirror; the in-memory registry stays
// authoritative either way.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// AuthConfig contains authentication settings for the task API.
// APIKeyHash is a bcrypt hash of the shared API key that clients exchange
// for a bearer token at the token endpoint.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	APIKeyHash           string `mapstructure:"api_key_hash"           validate:"required"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// WorkerConfig tunes the worker pool and the dispatch pipeline.
// The latencies bound the simulated processing interval per worker role;
// specialists are deliberately slower than utilities.
type WorkerConfig struct {
	Count               int `mapstructure:"count"                 validate:"required,gt=0"`
	QueueSize           int `mapstructure:"queue_size"            validate:"required,gt=0"`
	SpecialistLatencyMs int `mapstructure:"specialist_latency_ms" validate:"gte=0"`
	UtilityLatencyMs    int `mapstructure:"utility_latency_ms"    validate:"gte=0"`
}

// MonitorConfig controls the background system metrics sampler.
type MonitorConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalSeconds int  `mapstructure:"interval_seconds" validate:"required,gt=0"`
}
