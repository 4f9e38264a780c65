package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	CORS     CORSConfig     `yaml:"cors"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// CORSConfig controls which browser origins may call the API
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DispatchConfig tunes the send loop
type DispatchConfig struct {
	SendDelayMS        int `yaml:"send_delay_ms"`
	SendTimeoutSeconds int `yaml:"send_timeout_seconds"`
}

// Delay returns the pause between consecutive sends
func (c DispatchConfig) Delay() time.Duration {
	return time.Duration(c.SendDelayMS) * time.Millisecond
}

// SendTimeout returns the per-message delivery deadline
func (c DispatchConfig) SendTimeout() time.Duration {
	return time.Duration(c.SendTimeoutSeconds) * time.Second
}

// SMTPConfig tunes the SMTP transport
type SMTPConfig struct {
	DialTimeoutSeconds int `yaml:"dial_timeout_seconds"`
}

// DialTimeout returns the connection and handshake deadline
func (c SMTPConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutSeconds) * time.Second
}

// RedisConfig holds the optional progress snapshot store
type RedisConfig struct {
	Enabled            bool   `yaml:"enabled"`
	Addr               string `yaml:"addr"`
	Password           string `yaml:"password"`
	DB                 int    `yaml:"db"`
	ProgressTTLSeconds int    `yaml:"progress_ttl_seconds"`
}

// ProgressTTL returns how long run snapshots stay readable
func (c RedisConfig) ProgressTTL() time.Duration {
	return time.Duration(c.ProgressTTLSeconds) * time.Second
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII bool   `yaml:"redact_pii"`
}

// Load reads and parses the configuration file. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
	if cfg.Dispatch.SendDelayMS == 0 {
		cfg.Dispatch.SendDelayMS = 100
	}
	if cfg.Dispatch.SendTimeoutSeconds == 0 {
		cfg.Dispatch.SendTimeoutSeconds = 30
	}
	if cfg.SMTP.DialTimeoutSeconds == 0 {
		cfg.SMTP.DialTimeoutSeconds = 10
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.ProgressTTLSeconds == 0 {
		cfg.Redis.ProgressTTLSeconds = 3600
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.Redis.DB = n
		}
	}
	if delay := os.Getenv("SEND_DELAY_MS"); delay != "" {
		if ms, err := strconv.Atoi(delay); err == nil && ms >= 0 {
			cfg.Dispatch.SendDelayMS = ms
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	return cfg, nil
}
