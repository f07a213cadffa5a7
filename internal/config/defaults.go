// Package config provides configuration loading, defaults, and validation for
// the SafeHarbor platform.
package config

import "time"

const (
	DefaultServerPort      = 8080
	DefaultServerMode      = "release"
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxBodySize     = 1 << 20 // 1 MiB JSON bodies; attachments go through MinIO

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "safeharbor"
	DefaultDBMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "safeharbor:"

	DefaultKafkaBroker      = "localhost:9092"
	DefaultKafkaGroupID     = "safeharbor-workers"
	DefaultKafkaTopicPrefix = "safeharbor.report"

	DefaultMinIOEndpoint      = "localhost:9000"
	DefaultMinIOBucket        = "safeharbor-attachments"
	DefaultMinIOMaxObjectSize = 5 << 20 // 5 MiB per attachment

	DefaultAuthIssuer       = "safeharbor"
	DefaultAuthTenantsClaim = "tenants"

	DefaultIntelligenceBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	DefaultIntelligenceModel     = "gemini-2.5-flash"
	DefaultIntelligenceTimeout   = 30 * time.Second
	DefaultIntelligenceBatchSize = 20

	DefaultNotifierSMTPPort = 587

	DefaultWorkerScanInterval = 15 * time.Minute
	DefaultWorkerConcurrency  = 4

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields already set by the caller are left unchanged so that explicit
// configuration always wins. It must run after unmarshalling and before
// Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "migrations"
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = 5 * time.Minute
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.TopicPrefix == "" {
		cfg.Kafka.TopicPrefix = DefaultKafkaTopicPrefix
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = time.Second
	}

	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.MaxObjectSize == 0 {
		cfg.MinIO.MaxObjectSize = DefaultMinIOMaxObjectSize
	}
	if cfg.MinIO.PresignExpiry == 0 {
		cfg.MinIO.PresignExpiry = time.Hour
	}

	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = DefaultAuthIssuer
	}
	if cfg.Auth.TenantsClaim == "" {
		cfg.Auth.TenantsClaim = DefaultAuthTenantsClaim
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Auth.ClockSkew == 0 {
		cfg.Auth.ClockSkew = time.Minute
	}

	if cfg.Intelligence.BaseURL == "" {
		cfg.Intelligence.BaseURL = DefaultIntelligenceBaseURL
	}
	if cfg.Intelligence.Model == "" {
		cfg.Intelligence.Model = DefaultIntelligenceModel
	}
	if cfg.Intelligence.Timeout == 0 {
		cfg.Intelligence.Timeout = DefaultIntelligenceTimeout
	}
	if cfg.Intelligence.MaxBatchSize == 0 {
		cfg.Intelligence.MaxBatchSize = DefaultIntelligenceBatchSize
	}

	if cfg.Worker.ScanInterval == 0 {
		cfg.Worker.ScanInterval = DefaultWorkerScanInterval
	}
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
	if cfg.Worker.RetryBackoff == 0 {
		cfg.Worker.RetryBackoff = 5 * time.Second
	}

	if cfg.Notifier.SMTPPort == 0 {
		cfg.Notifier.SMTPPort = DefaultNotifierSMTPPort
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

//Personal.AI order the ending
