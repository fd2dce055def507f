package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/workforce-analytics-api/internal/aggregator"
	"github.com/workforce-analytics-api/internal/clock"
	"github.com/workforce-analytics-api/internal/config"
	"github.com/workforce-analytics-api/internal/handler"
	"github.com/workforce-analytics-api/internal/migrations"
	"github.com/workforce-analytics-api/internal/monitoring"
	"github.com/workforce-analytics-api/internal/repository"
	"github.com/workforce-analytics-api/internal/service"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	// Инициализация логгера
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	// Подключение к БД
	db, err := connectDB(cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("failed to get sql.DB", slog.Any("error", err))
		os.Exit(1)
	}
	defer sqlDB.Close()

	// Запуск миграций
	if err := migrations.Up(context.Background(), sqlDB, cfg.Database.Driver); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Хранилище моделей
	models, closeStore, err := newModelStore(cfg.Store, db)
	if err != nil {
		logger.Error("failed to init model store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	clk := clock.Real{}
	metrics := monitoring.New()

	// Инициализация сервисов
	reader := aggregator.NewReader(repository.NewStore(db), clk)
	caches := service.NewAnalyticsCaches(cfg.Cache.TTL, clk, metrics)
	analytics := service.NewAnalyticsService(reader, caches, clk)
	trainer := service.NewTrainingService(reader, models, service.TrainingConfig{
		Periods:      cfg.Model.Periods,
		Seed:         cfg.Model.Seed,
		Noise:        cfg.Model.Noise,
		Learner:      cfg.Model.Learner,
		Lambda:       cfg.Model.Lambda,
		TrainRevenue: cfg.Model.TrainRevenue,
	}, clk, metrics, logger)
	predictor := service.NewPredictionService(reader, models, cfg.Model.MaxAge, clk, metrics)
	runner := service.NewRunner(trainer, cfg.Training.Workers, cfg.Training.Retention, clk, logger)

	// Инициализация хендлеров
	analyticsHandler := handler.NewAnalyticsHandler(analytics, logger)
	predictionHandler := handler.NewPredictionHandler(trainer, runner, predictor, logger)

	// Настройка роутера
	router := handler.NewRouter(analyticsHandler, predictionHandler, metrics, logger)
	httpHandler := router.Setup()

	// Настройка HTTP сервера
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("could not gracefully shutdown the server", slog.Any("error", err))
		}
		if err := runner.Shutdown(ctx); err != nil {
			logger.Error("training runner did not drain in time", slog.Any("error", err))
		}
		close(done)
	}()

	logger.Info("server is starting",
		slog.String("port", cfg.Server.Port),
		slog.String("db_driver", cfg.Database.Driver),
		slog.String("model_store", cfg.Store.Kind),
		slog.String("learner", cfg.Model.Learner),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("could not listen on port", slog.String("port", cfg.Server.Port), slog.Any("error", err))
		os.Exit(1)
	}

	<-done
	logger.Info("server stopped")
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func connectDB(cfg config.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	dialector := postgres.Open(cfg.DSN())
	if cfg.Driver == "sqlite" {
		dialector = sqlite.Open(cfg.SQLitePath + "?_foreign_keys=on&_busy_timeout=5000")
	}

	connect := func() (*gorm.DB, error) {
		db, err := gorm.Open(dialector, &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if err := sqlDB.Ping(); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		return db, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = time.Minute

	db, err := backoff.RetryNotifyWithData(connect, policy, func(err error, next time.Duration) {
		logger.Warn("database is not ready, retrying",
			slog.Any("error", err),
			slog.Duration("next_attempt_in", next),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func newModelStore(cfg config.StoreConfig, db *gorm.DB) (repository.ModelStore, func(), error) {
	switch cfg.Kind {
	case "memory":
		return repository.NewMemoryModelStore(), func() {}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return repository.NewRedisModelStore(client), func() { _ = client.Close() }, nil
	default:
		return repository.NewModelRepository(db), func() {}, nil
	}
}
