package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/config"
	"github.com/go-chi/httplog/v3"
)

// New builds a JSON logger whose attribute names follow the ECS schema, so
// application logs and request logs share one format.
func New(cfg config.AppConfig) *slog.Logger {
	return NewWithWriter(os.Stdout, cfg)
}

func NewWithWriter(w io.Writer, cfg config.AppConfig) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(cfg.Env == "development")

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(cfg.LogLevel),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.Name),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)
}

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown values mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
