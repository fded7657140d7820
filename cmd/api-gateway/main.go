package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/course-backoffice/internal/handler"
	internalmiddleware "github.com/noah-isme/course-backoffice/internal/middleware"
	"github.com/noah-isme/course-backoffice/internal/models"
	"github.com/noah-isme/course-backoffice/internal/repository"
	"github.com/noah-isme/course-backoffice/internal/service"
	"github.com/noah-isme/course-backoffice/pkg/cache"
	"github.com/noah-isme/course-backoffice/pkg/config"
	"github.com/noah-isme/course-backoffice/pkg/database"
	"github.com/noah-isme/course-backoffice/pkg/jobs"
	"github.com/noah-isme/course-backoffice/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-backoffice/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-backoffice/pkg/middleware/requestid"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}
	cacheSvc := service.NewCacheService(
		repository.NewCacheRepository(redisClient, logr),
		metrics,
		cfg.Cache.CatalogTTL,
		cfg.Cache.EnrolledHints,
		logr,
		redisClient != nil,
	)

	reviews := service.NewPaymentReviewService(nil, metrics, logr)
	if cfg.Database.Enabled {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect to payment review ledger", zap.Error(err))
		}
		defer db.Close()
		ledger := repository.NewPaymentReviewRepository(db)
		if err := ledger.EnsureSchema(ctx); err != nil {
			logr.Fatal("failed to prepare payment review ledger", zap.Error(err))
		}
		reviews = service.NewPaymentReviewService(ledger, metrics, logr)
		checks["postgres"] = ledger.Ping
	}

	if cfg.Events.Enabled {
		publisher, err := repository.NewRabbitMQPublisher(cfg.Events.AMQPURL, cfg.Events.Queue, logr)
		if err != nil {
			logr.Fatal("failed to connect to rabbitmq", zap.Error(err))
		}
		defer publisher.Close() //nolint:errcheck

		queue := jobs.NewQueue(repository.PaymentEventType, service.PaymentEventHandler(publisher, metrics, logr), jobs.QueueConfig{
			Workers:    cfg.Events.Workers,
			MaxRetries: cfg.Events.MaxRetries,
			RetryDelay: cfg.Events.RetryDelay,
			Logger:     logr,
		})
		queue.Start(context.Background())
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			queue.Stop(stopCtx)
		}()
		reviews.AttachQueue(queue)
	}

	backend := repository.NewBackendClient(cfg.Backend, nil, logr)
	enrollmentRepo := repository.NewEnrollmentRepository(backend)
	courseRepo := repository.NewCourseRepository(backend)
	packageRepo := repository.NewPackageRepository(backend)
	studentRepo := repository.NewStudentRepository(backend)

	catalogSvc := service.NewCatalogService(courseRepo, packageRepo, cacheSvc, logr)
	packageSvc := service.NewPackageService(packageRepo, catalogSvc, logr)
	studentSvc := service.NewStudentService(enrollmentRepo, catalogSvc, cacheSvc, validator.New(), logr)
	exportSvc := service.NewExportService(cfg.Payments.ExportMaxRows, logr, nil, nil)
	authSvc := service.NewAuthService(service.AuthConfig{
		Secret:    cfg.JWT.Secret,
		AdminRole: models.UserRole(cfg.JWT.AdminRole),
	}, logr)

	consoles := service.NewConsoleSessions(service.NewConsoleFactory(service.ConsoleDeps{
		Enrollments: enrollmentRepo,
		Catalog:     catalogSvc,
		Students:    studentRepo,
		Recorder:    reviews,
		Metrics:     metrics,
		PageSize:    cfg.Payments.PageSize,
		MaxPageSize: cfg.Payments.MaxPageSize,
		Search: service.StudentSearchConfig{
			Quiet:    cfg.Search.Debounce,
			MinChars: cfg.Search.MinChars,
			Limit:    cfg.Search.StudentLimit,
		},
		Logger: logr,
	}), metrics, logr)
	go consoles.Run(ctx, cfg.Console.SweepInterval, cfg.Console.IdleTimeout)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Payments:    handler.NewPaymentsHandler(consoles, reviews, exportSvc),
		Enrollments: handler.NewEnrollmentHandler(consoles),
		Catalog:     handler.NewCatalogHandler(catalogSvc, consoles),
		Packages:    handler.NewPackageHandler(packageSvc),
		Students:    handler.NewStudentHandler(studentSvc, catalogSvc),
		Console:     handler.NewConsoleHandler(consoles),
		Metrics:     handler.NewMetricsHandler(metrics, checks),
	}, authSvc, cfg.JWT.CookieName)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("backend", cfg.Backend.BaseURL),
			zap.Bool("jwt_verification", authSvc.Verifying()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
