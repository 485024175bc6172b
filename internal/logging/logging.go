// Package logging builds the process logger from configuration.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/roach88/kpidash/internal/config"
)

// TimestampFormat is used by both formatters.
const TimestampFormat = "2006-01-02 15:04:05.000"

// New returns a logger configured by cfg.
//
// Output goes to out unless cfg.File is set, in which case it goes to a
// size-rotated file. An unknown level falls back to info and is reported
// once at warn level.
func New(cfg config.LogConfig, out io.Writer) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: TimestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: TimestampFormat,
		})
	}

	if cfg.File != "" {
		logger.SetOutput(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
	} else {
		logger.SetOutput(out)
	}

	if err != nil {
		logger.WithField("level", cfg.Level).Warn("unknown log level, using info")
	}
	return logger
}

// Discard returns a logger that drops every entry.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Close releases the logger's output if it holds a file.
func Close(logger *logrus.Logger) error {
	if c, ok := logger.Out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
