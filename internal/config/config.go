// Package config defines all configuration structures for the SafeHarbor
// platform. No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"encoding/base64"
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka producer parameters for the report event stream.
type KafkaConfig struct {
	Brokers         []string      `mapstructure:"brokers"`
	GroupID         string        `mapstructure:"group_id"`
	ProducerRetries int           `mapstructure:"producer_retries"`
	BatchTimeout    time.Duration `mapstructure:"batch_timeout"`
	TopicPrefix     string        `mapstructure:"topic_prefix"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters used for
// report attachments.
type MinIOConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Bucket        string        `mapstructure:"bucket"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
	MaxObjectSize int64         `mapstructure:"max_object_size"`
}

// AuthConfig holds JWT verification parameters for the authenticated
// (case-manager) API surface.
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	Issuer        string        `mapstructure:"issuer"`
	Audience      string        `mapstructure:"audience"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	ClockSkew     time.Duration `mapstructure:"clock_skew"`
	TenantsClaim  string        `mapstructure:"tenants_claim"`
	SubjectHeader string        `mapstructure:"subject_header"`
}

// IntelligenceConfig holds parameters for the LLM-backed severity estimator.
type IntelligenceConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Model        string        `mapstructure:"model"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxBatchSize int           `mapstructure:"max_batch_size"`
}

// EncryptionConfig holds the key material for contact-detail encryption.
type EncryptionConfig struct {
	// ContactKey is the base64 encoding of a 32-byte AES-256 key.
	ContactKey string `mapstructure:"contact_key"`
}

// NotifierConfig holds the email notification settings consumed by the
// background worker. Notifications are best-effort; an unreachable SMTP
// host is logged and skipped.
type NotifierConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

// WorkerConfig holds background-worker execution parameters for the deadline
// scanner.
type WorkerConfig struct {
	ScanInterval time.Duration `mapstructure:"scan_interval"`
	Concurrency  int           `mapstructure:"concurrency"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string   `mapstructure:"format"` // "json" | "console"
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// Config is the root configuration structure for the whole platform.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	MinIO        MinIOConfig        `mapstructure:"minio"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Intelligence IntelligenceConfig `mapstructure:"intelligence"`
	Encryption   EncryptionConfig   `mapstructure:"encryption"`
	Worker       WorkerConfig       `mapstructure:"worker"`
	Notifier     NotifierConfig     `mapstructure:"notifier"`
	Log          LogConfig          `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret is required")
	}

	if c.Encryption.ContactKey != "" {
		key, err := base64.StdEncoding.DecodeString(c.Encryption.ContactKey)
		if err != nil {
			return fmt.Errorf("config: encryption.contact_key is not valid base64: %w", err)
		}
		if len(key) != 32 {
			return fmt.Errorf("config: encryption.contact_key must decode to 32 bytes, got %d", len(key))
		}
	}

	if c.Intelligence.Enabled && c.Intelligence.BaseURL == "" {
		return fmt.Errorf("config: intelligence.base_url is required when intelligence.enabled is true")
	}

	if c.Notifier.Enabled {
		if c.Notifier.SMTPHost == "" {
			return fmt.Errorf("config: notifier.smtp_host is required when notifier.enabled is true")
		}
		if c.Notifier.From == "" || c.Notifier.To == "" {
			return fmt.Errorf("config: notifier.from and notifier.to are required when notifier.enabled is true")
		}
	}
	if c.Intelligence.MaxBatchSize < 1 {
		return fmt.Errorf("config: intelligence.max_batch_size must be >= 1, got %d", c.Intelligence.MaxBatchSize)
	}

	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be >= 1, got %d", c.Worker.Concurrency)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

// DSN renders the PostgreSQL connection string for lib/pq.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

//Personal.AI order the ending
