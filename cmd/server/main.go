package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kessa99/task-manager-back/config"
	"github.com/kessa99/task-manager-back/internal/auth"
	"github.com/kessa99/task-manager-back/internal/email"
	"github.com/kessa99/task-manager-back/internal/events"
	"github.com/kessa99/task-manager-back/internal/health"
	"github.com/kessa99/task-manager-back/internal/infrastructure/postgres"
	"github.com/kessa99/task-manager-back/internal/infrastructure/redis"
	ctxlog "github.com/kessa99/task-manager-back/internal/log"
	"github.com/kessa99/task-manager-back/internal/metrics"
	"github.com/kessa99/task-manager-back/internal/repository"
	httptransport "github.com/kessa99/task-manager-back/internal/transport/http"
	"github.com/kessa99/task-manager-back/internal/transport/http/handler"
	"github.com/kessa99/task-manager-back/internal/usecase"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

const appName = "Task Manager"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		logger.Info("migrations applied")
	}

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	deps := []health.Dependency{{Name: "postgres", Pinger: pool}}

	// Refresh-token revocation is optional; without redis logout is a no-op.
	var revocations repository.RevocationStore
	if cfg.RedisURL != "" {
		rdb, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()

		store := redis.NewRevocationStore(rdb)
		revocations = store
		deps = append(deps, health.Dependency{Name: "redis", Pinger: store})
	} else {
		logger.Warn("REDIS_URL not set, refresh token revocation disabled")
	}

	publisher, err := events.NewPublisher(events.Config{
		Broker:        cfg.EventsBroker,
		KafkaBrokers:  cfg.KafkaBrokers,
		KafkaTopic:    cfg.KafkaTopic,
		RabbitMQURL:   cfg.RabbitMQURL,
		RabbitMQQueue: cfg.RabbitMQQueue,
	}, logger)
	if err != nil {
		log.Fatalf("events: %v", err)
	}
	defer publisher.Close()

	sender, err := email.NewSender(email.SenderConfig{
		Provider:     cfg.EmailProvider,
		FromName:     cfg.EmailFromName,
		ResendAPIKey: cfg.ResendAPIKey,
		ResendFrom:   cfg.ResendFrom,
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUser:     cfg.SMTPUser,
		SMTPPassword: cfg.SMTPPassword,
		SMTPFrom:     cfg.SMTPFrom,
	}, logger)
	if err != nil {
		log.Fatalf("email: %v", err)
	}
	notifier := email.NewNotifier(sender, cfg.FrontendURL, appName, cfg.InvitationTTL())

	tokens, err := auth.NewTokens(auth.TokenConfig{
		Secret:     []byte(cfg.JWTSecret),
		Algorithm:  cfg.JWTAlgorithm,
		AccessTTL:  cfg.AccessTTL(),
		RefreshTTL: cfg.RefreshTTL(),
	})
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}
	hasher := auth.NewHasher(cfg.BcryptCost)

	// Stores
	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	assignRepo := postgres.NewAssignRepository(pool)
	invitationRepo := postgres.NewInvitationRepository(pool)
	txManager := postgres.NewTxManager(pool)

	// Use cases
	authUsecase, err := usecase.NewAuthUsecase(userRepo, revocations, hasher, tokens, publisher, logger)
	if err != nil {
		log.Fatalf("auth usecase: %v", err)
	}
	invitationUsecase := usecase.NewInvitationUsecase(usecase.InvitationDeps{
		Invitations: invitationRepo,
		Users:       userRepo,
		Tasks:       taskRepo,
		Assigns:     assignRepo,
		Tx:          txManager,
		Hasher:      hasher,
		Tokens:      tokens,
		Notifier:    notifier,
		Events:      publisher,
		TTL:         cfg.InvitationTTL(),
	}, logger)
	taskUsecase := usecase.NewTaskUsecase(taskRepo)
	assignUsecase := usecase.NewAssignUsecase(assignRepo, taskRepo, userRepo)
	userUsecase := usecase.NewUserUsecase(userRepo)

	metrics.Register(prometheus.DefaultRegisterer)
	checker := health.NewChecker(logger, prometheus.DefaultRegisterer, deps...)

	router := httptransport.NewRouter(logger, httptransport.RouterConfig{
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitAuthPerMinute,
		RateLimitBurst:     cfg.RateLimitAuthBurst,
	}, authUsecase, httptransport.Handlers{
		Auth:       handler.NewAuthHandler(authUsecase, logger),
		Invitation: handler.NewInvitationHandler(invitationUsecase, logger),
		Task:       handler.NewTaskHandler(taskUsecase, logger),
		Assign:     handler.NewAssignHandler(assignUsecase, logger),
		User:       handler.NewUserHandler(userUsecase, logger),
		Health:     handler.NewHealthHandler(checker),
	})

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
