package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	S3       S3Config
	Blob     BlobConfig
	QR       QRConfig
	Notify   NotifyConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
	AutoMigrate     bool
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// S3Config holds AWS S3 configuration for catalog images.
type S3Config struct {
	Enabled       bool
	Bucket        string
	Region        string
	Prefix        string // Key prefix within bucket (e.g., "images/")
	PublicBaseURL string // Overrides the virtual-hosted bucket URL when set
}

// BlobConfig holds the local file system blob store used when S3 is off.
type BlobConfig struct {
	LocalDir     string
	LocalBaseURL string
}

// QRConfig holds QR code generation settings.
type QRConfig struct {
	CallbackBaseURL   string
	Size              int
	UploadConcurrency int
}

// NotifyConfig holds the notification transports.
type NotifyConfig struct {
	KafkaBrokers       []string
	KafkaMailTopic     string
	RedisAddr          string
	OrderChannelPrefix string
	Timeout            time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "menuely"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		S3: S3Config{
			Enabled:       getEnvAsBool("S3_ENABLED", false),
			Bucket:        getEnv("S3_BUCKET", ""),
			Region:        getEnv("S3_REGION", "us-east-1"),
			Prefix:        getEnv("S3_PREFIX", "images/"),
			PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		},
		Blob: BlobConfig{
			LocalDir:     getEnv("LOCAL_BLOB_DIR", "data/images"),
			LocalBaseURL: getEnv("LOCAL_BLOB_BASE_URL", "http://localhost:8080/static"),
		},
		QR: QRConfig{
			CallbackBaseURL:   getEnv("QR_CALLBACK_BASE_URL", "http://localhost:3000/order"),
			Size:              getEnvAsInt("QR_SIZE", 500),
			UploadConcurrency: getEnvAsInt("QR_UPLOAD_CONCURRENCY", 4),
		},
		Notify: NotifyConfig{
			KafkaBrokers:       getEnvAsList("KAFKA_BROKERS"),
			KafkaMailTopic:     getEnv("KAFKA_MAIL_TOPIC", "mail.qr-codes-ready"),
			RedisAddr:          getEnv("REDIS_ADDR", ""),
			OrderChannelPrefix: getEnv("REDIS_ORDER_CHANNEL_PREFIX", "orders:restaurant:"),
			Timeout:            time.Duration(getEnvAsInt("NOTIFY_TIMEOUT_SECONDS", 5)) * time.Second,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Blob.LocalDir == "" {
		return fmt.Errorf("local blob directory is required")
	}

	u, err := url.Parse(c.QR.CallbackBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid QR callback base URL: %q", c.QR.CallbackBaseURL)
	}

	if c.QR.Size < 64 || c.QR.Size > 2048 {
		return fmt.Errorf("invalid QR size: %d (must be between 64 and 2048)", c.QR.Size)
	}

	if c.QR.UploadConcurrency < 1 {
		return fmt.Errorf("QR upload concurrency must be at least 1")
	}

	if len(c.Notify.KafkaBrokers) > 0 && c.Notify.KafkaMailTopic == "" {
		return fmt.Errorf("kafka mail topic is required when kafka brokers are set")
	}

	if c.Notify.Timeout <= 0 {
		return fmt.Errorf("notification timeout must be positive")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated environment variable, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
