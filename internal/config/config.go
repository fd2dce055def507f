package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config содержит настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Model    ModelConfig
	Store    StoreConfig
	Training TrainingConfig
	Log      LogConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port string `validate:"required,numeric"`
}

// DatabaseConfig - настройки подключения к БД
type DatabaseConfig struct {
	Driver     string `validate:"oneof=postgres sqlite"`
	Host       string `validate:"required_if=Driver postgres"`
	Port       string `validate:"required_if=Driver postgres"`
	User       string
	Password   string
	DBName     string `validate:"required_if=Driver postgres"`
	SSLMode    string
	SQLitePath string `validate:"required_if=Driver sqlite"`
}

// CacheConfig - время жизни закэшированных показателей
type CacheConfig struct {
	TTL time.Duration `validate:"gt=0"`
}

// ModelConfig - синтез истории и обучение моделей
type ModelConfig struct {
	Periods      int     `validate:"min=3"`
	Noise        float64 `validate:"gt=0,lt=1"`
	Seed         int64
	Learner      string  `validate:"oneof=ridge ols"`
	Lambda       float64 `validate:"gte=0"`
	TrainRevenue bool
	MaxAge       time.Duration `validate:"gte=0"`
}

// StoreConfig - где хранятся обученные модели
type StoreConfig struct {
	Kind          string `validate:"oneof=database memory redis"`
	RedisAddr     string `validate:"required_if=Kind redis"`
	RedisPassword string
	RedisDB       int `validate:"gte=0"`
}

// TrainingConfig - пул фонового обучения
type TrainingConfig struct {
	Workers   int           `validate:"min=1"`
	Retention time.Duration `validate:"gt=0"`
}

// LogConfig - уровень и формат логов
type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json text"`
}

// DSN возвращает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// SlogLevel переводит уровень из конфигурации в slog.Level
func (c *LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "workforce")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "workforce.db")

	v.SetDefault("CACHE_TTL_SECONDS", 300)

	v.SetDefault("SYNTH_PERIODS", 12)
	v.SetDefault("SYNTH_NOISE", 0.15)
	v.SetDefault("SYNTH_SEED", 42)
	v.SetDefault("MODEL_LEARNER", "ridge")
	v.SetDefault("RIDGE_LAMBDA", 1e-3)
	v.SetDefault("MODEL_TRAIN_REVENUE", false)
	v.SetDefault("MODEL_MAX_AGE_HOURS", 168)

	v.SetDefault("MODEL_STORE", "database")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("TRAINING_WORKERS", 2)
	v.SetDefault("TASK_RETENTION_MINUTES", 60)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Load загружает конфигурацию из .env (если есть) и переменных окружения
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(v.GetString("DB_DRIVER")),
			Host:       v.GetString("DB_HOST"),
			Port:       v.GetString("DB_PORT"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			DBName:     v.GetString("DB_NAME"),
			SSLMode:    v.GetString("DB_SSLMODE"),
			SQLitePath: v.GetString("SQLITE_PATH"),
		},
		Cache: CacheConfig{
			TTL: time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		},
		Model: ModelConfig{
			Periods:      v.GetInt("SYNTH_PERIODS"),
			Noise:        v.GetFloat64("SYNTH_NOISE"),
			Seed:         v.GetInt64("SYNTH_SEED"),
			Learner:      strings.ToLower(v.GetString("MODEL_LEARNER")),
			Lambda:       v.GetFloat64("RIDGE_LAMBDA"),
			TrainRevenue: v.GetBool("MODEL_TRAIN_REVENUE"),
			MaxAge:       time.Duration(v.GetInt("MODEL_MAX_AGE_HOURS")) * time.Hour,
		},
		Store: StoreConfig{
			Kind:          strings.ToLower(v.GetString("MODEL_STORE")),
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
		},
		Training: TrainingConfig{
			Workers:   v.GetInt("TRAINING_WORKERS"),
			Retention: time.Duration(v.GetInt("TASK_RETENTION_MINUTES")) * time.Minute,
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
