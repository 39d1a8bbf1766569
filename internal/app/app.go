package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codedits/bitecheck/internal/auth"
	"github.com/codedits/bitecheck/internal/config"
	"github.com/codedits/bitecheck/internal/event"
	handler "github.com/codedits/bitecheck/internal/handler/http"
	"github.com/codedits/bitecheck/internal/imagestore"
	"github.com/codedits/bitecheck/internal/imagestore/memory"
	"github.com/codedits/bitecheck/internal/imagestore/s3"
	"github.com/codedits/bitecheck/internal/repository/postgres"
	"github.com/codedits/bitecheck/internal/service"
	"github.com/codedits/bitecheck/migrations"
	"github.com/codedits/bitecheck/pkg/database"
	"github.com/codedits/bitecheck/pkg/health"
	pkgkafka "github.com/codedits/bitecheck/pkg/kafka"
	"github.com/codedits/bitecheck/pkg/middleware"
)

// App wires together all dependencies and runs the bitecheck API.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	producer   *pkgkafka.Producer
	reconciler *service.ReconcilerService
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "bitecheck")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Image storage: S3-compatible when a bucket is configured, in-memory
	// otherwise.
	var images imagestore.Store
	if cfg.S3Bucket != "" {
		images, err = s3.New(ctx, s3.Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			PublicBaseURL:   cfg.S3PublicURL,
		}, logger)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init s3 image store: %w", err)
		}
		logger.Info("s3 image store initialized", slog.String("bucket", cfg.S3Bucket))
	} else {
		images = memory.New(cfg.S3PublicURL)
		logger.Warn("no S3 bucket configured, using in-memory image store")
	}

	// Build the dependency graph.
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiryDuration())
	userRepo := postgres.NewUserRepository(pool)
	restaurantRepo := postgres.NewRestaurantRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)
	eventProducer := event.NewProducer(producer, logger)

	aggregator := service.NewAggregatorService(reviewRepo, restaurantRepo, eventProducer, logger)
	reconciler := service.NewReconcilerService(reviewRepo, restaurantRepo, logger)
	reviewService := service.NewReviewService(reviewRepo, aggregator, eventProducer, images, logger)
	restaurantService := service.NewRestaurantService(restaurantRepo, reviewRepo, eventProducer, logger)
	userService := service.NewUserService(userRepo, reviewRepo, aggregator, jwtManager, eventProducer, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(handler.Deps{
		UserService:       userService,
		RestaurantService: restaurantService,
		ReviewService:     reviewService,
		Reconciler:        reconciler,
		Images:            images,
		JWTManager:        jwtManager,
		HealthHandler:     healthHandler,
		Logger:            logger,
		CORSConfig:        corsConfig,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		producer:   producer,
		reconciler: reconciler,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and the background reconciliation loop, then
// blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go a.reconciler.Start(ctx, a.cfg.ReconcileIntervalDuration())

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: HTTP server first so
// in-flight requests drain, then the Kafka producer, then the pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
