package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/safeharbor-io/safeharbor/internal/config"
	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/internal/domain/tenant"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/crypto"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/database/postgres"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/database/postgres/repositories"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/database/redis"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/messaging/kafka"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/prometheus"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/storage/minio"
	httpiface "github.com/safeharbor-io/safeharbor/internal/interfaces/http"
	"github.com/safeharbor-io/safeharbor/internal/interfaces/http/handlers"
	"github.com/safeharbor-io/safeharbor/internal/interfaces/http/middleware"
)

func newServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the SafeHarbor API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, log)
		},
	}
}

// runServe wires the full dependency graph and serves until SIGINT/SIGTERM.
func runServe(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	// Storage.
	conn, err := postgres.NewConnection(cfg.Database, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	reportRepo := repositories.NewPostgresReportRepo(conn, log)
	messageRepo := repositories.NewPostgresMessageRepo(conn, log)
	tenantRepo := repositories.NewPostgresTenantRepo(conn, log)

	// Cache. The platform degrades without Redis rather than refusing to
	// start; the rate limiter and stats cache both fail open.
	var cache redis.Cache
	var redisPing handlers.Pinger
	if redisClient, err := redis.NewClient(cfg.Redis, log); err != nil {
		log.Warn("redis unavailable, caching and rate limiting disabled", logging.Err(err))
	} else {
		defer redisClient.Close()
		cache = redis.NewCache(redisClient, log,
			redis.WithPrefix(cfg.Redis.KeyPrefix),
			redis.WithDefaultTTL(cfg.Redis.DefaultTTL))
		redisPing = redisClient
	}

	// Event stream. Same posture: events are non-essential.
	var publisher report.EventPublisher
	producer, err := kafka.NewProducer(cfg.Kafka, log)
	if err != nil {
		log.Warn("kafka unavailable, event publishing disabled", logging.Err(err))
	} else {
		defer producer.Close()
		publisher = producer
	}

	// Contact encryption is mandatory for non-anonymous intake.
	var cipher report.ContactCipher
	if cfg.Encryption.ContactKey != "" {
		cipher, err = crypto.NewContactCipher(cfg.Encryption.ContactKey)
		if err != nil {
			return err
		}
	}

	svc := report.NewService(reportRepo, messageRepo, cipher, publisher, log)
	resolver := tenant.NewResolver(tenantRepo)
	metrics := prometheus.NewMetrics()

	// Object storage for evidence attachments. Non-essential: without it
	// the attachment endpoints are simply not mounted.
	var attachmentHandler *handlers.AttachmentHandler
	if store, err := minio.NewAttachmentStore(cfg.MinIO, log); err != nil {
		log.Warn("object storage unavailable, attachments disabled", logging.Err(err))
	} else {
		svc = svc.WithAttachments(repositories.NewPostgresAttachmentRepo(conn, log), store)
		attachmentHandler = handlers.NewAttachmentHandler(svc, resolver, cfg.MinIO.MaxObjectSize, log)
	}

	var rateLimit *middleware.RateLimitMiddleware
	reportHandler := handlers.NewReportHandler(svc, resolver, metrics, log)
	if cache != nil {
		rateLimit = middleware.NewRateLimitMiddleware(cache, middleware.DefaultRateLimitConfig(), log)
		reportHandler = reportHandler.WithTrackingCache(cache)
	}

	router := httpiface.NewRouter(httpiface.RouterConfig{
		ReportHandler:     reportHandler,
		TenantHandler:     handlers.NewTenantHandler(svc, tenantRepo, resolver, cache, metrics, log),
		AttachmentHandler: attachmentHandler,
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"postgres": handlers.PingerFunc(conn.HealthCheck),
			"redis":    redisPing,
		}, log),
		AuthMiddleware:      middleware.NewAuthMiddleware(cfg.Auth, log),
		CORSMiddleware:      middleware.NewCORSMiddleware(middleware.DefaultCORSConfig()),
		RateLimitMiddleware: rateLimit,
		RequestLogging:      middleware.RequestLogging(log, metrics, middleware.DefaultLoggingConfig()),
		MetricsHandler:      metrics.Handler(),
	})

	server := httpiface.NewServer(cfg.Server, router, log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	case sig := <-stop:
		log.Info("shutdown signal received", logging.String("signal", sig.String()))
	}

	if err := server.Stop(context.Background()); err != nil {
		return err
	}
	return <-errCh
}

//Personal.AI order the ending
