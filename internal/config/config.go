package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	ShutdownTimeout  time.Duration
	MetricsEnabled   bool

	Driver          string
	DSN             string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogSQL          bool
}

// env mirrors the process environment before normalisation.
type env struct {
	AppEnv   string `envconfig:"APP_ENV" default:"dev" validate:"oneof=dev prod"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080" validate:"required"`

	HTTPReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s" validate:"gte=0"`
	HTTPWriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s" validate:"gte=0"`
	ShutdownTimeout  time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
	MetricsEnabled   bool          `envconfig:"METRICS_ENABLED" default:"true"`

	Driver          string        `envconfig:"DB_DRIVER" default:"sqlite3" validate:"required"`
	DSN             string        `envconfig:"DB_DSN"`
	Path            string        `envconfig:"SQLITE_PATH" default:"../dev/sqlite/hawaii.db"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"4" validate:"gte=0"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"2" validate:"gte=0"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"0s" validate:"gte=0"`
	LogSQL          bool          `envconfig:"DB_LOG_SQL" default:"false"`
}

var validate = validator.New()

// LoadFromEnv reads an optional .env file from the working directory and then the
// process environment. Variables already set in the environment win over .env.
func LoadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var e env
	if err := envconfig.Process("", &e); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	e.AppEnv = strings.TrimSpace(e.AppEnv)
	if e.AppEnv == "" {
		e.AppEnv = "dev"
	}
	e.HTTPAddr = strings.TrimSpace(e.HTTPAddr)
	if e.HTTPAddr == "" {
		e.HTTPAddr = ":8080"
	}
	e.Driver = strings.TrimSpace(e.Driver)
	if e.Driver == "" {
		e.Driver = "sqlite3"
	}
	e.Path = strings.TrimSpace(e.Path)
	if e.Path == "" {
		e.Path = "../dev/sqlite/hawaii.db"
	}

	if err := validate.Struct(e); err != nil {
		return Config{}, describe(err)
	}

	level, err := parseLogLevel(e.LogLevel)
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:           e.AppEnv,
		LogLevel:         level,
		HTTPAddr:         e.HTTPAddr,
		HTTPReadTimeout:  e.HTTPReadTimeout,
		HTTPWriteTimeout: e.HTTPWriteTimeout,
		ShutdownTimeout:  e.ShutdownTimeout,
		MetricsEnabled:   e.MetricsEnabled,
		Driver:           e.Driver,
		DSN:              strings.TrimSpace(e.DSN),
		Path:             e.Path,
		MaxOpenConns:     e.MaxOpenConns,
		MaxIdleConns:     e.MaxIdleConns,
		ConnMaxLifetime:  e.ConnMaxLifetime,
		LogSQL:           e.LogSQL,
	}, nil
}

// describe turns validator errors into messages naming the env variable.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		key := envKey(fe.StructField())
		switch fe.Tag() {
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("invalid %s %q (allowed: %s)", key, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", ")))
		default:
			msgs = append(msgs, fmt.Sprintf("invalid %s %v (%s %s)", key, fe.Value(), fe.Tag(), fe.Param()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func envKey(field string) string {
	switch field {
	case "AppEnv":
		return "APP_ENV"
	case "HTTPAddr":
		return "HTTP_ADDR"
	case "HTTPReadTimeout":
		return "HTTP_READ_TIMEOUT"
	case "HTTPWriteTimeout":
		return "HTTP_WRITE_TIMEOUT"
	case "ShutdownTimeout":
		return "SHUTDOWN_TIMEOUT"
	case "Driver":
		return "DB_DRIVER"
	case "MaxOpenConns":
		return "DB_MAX_OPEN_CONNS"
	case "MaxIdleConns":
		return "DB_MAX_IDLE_CONNS"
	case "ConnMaxLifetime":
		return "DB_CONN_MAX_LIFETIME"
	default:
		return field
	}
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
