package log

import (
	"io"
	"os"
	"time"

	"github.com/ipfans/fxlogger"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lambriz/catalogbot/internal/config"
)

// NewLogger creates a configured zerolog.Logger instance
func NewLogger(cfg *config.Logging) zerolog.Logger {
	var out io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	// the file sink gets plain JSON lines, the console stays human readable
	if cfg.File != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg)).
		With().
		Timestamp().
		Caller().
		Logger()
}

// ParseLevel maps LOG_LEVEL to a zerolog level. DEBUG=true always wins.
func ParseLevel(cfg *config.Logging) zerolog.Level {
	if cfg.Debug {
		return zerolog.DebugLevel
	}

	switch cfg.Level {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewEventLogger routes fx lifecycle events through the application logger.
func NewEventLogger(log zerolog.Logger) fxevent.Logger {
	return fxlogger.WithZerolog(log)()
}

func Module() fx.Option {
	return fx.Options(
		fx.Module(
			"log",
			fx.Provide(
				NewLogger,
			),
		),
		fx.WithLogger(NewEventLogger),
	)
}
