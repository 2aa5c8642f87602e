// Package logger configures logrus for the service.
//
// The standard logrus logger is configured once at startup and handed to
// components as *logrus.Logger. Packages that have no logger injected (the
// response helpers) fall back to the package-level logrus functions, which
// write through the same configured instance.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options mirrors the log section of the config file.
type Options struct {
	Level  string // trace, debug, info, warn, error
	Format string // text or json
	Output string // stdout, stderr or a file path
}

// Init configures the standard logrus logger and returns it.
func Init(opts Options) (*logrus.Logger, error) {
	l := logrus.StandardLogger()
	if err := configure(l, opts); err != nil {
		return nil, err
	}
	return l, nil
}

// New returns a fresh logger, leaving the standard one untouched.
func New(opts Options) (*logrus.Logger, error) {
	l := logrus.New()
	if err := configure(l, opts); err != nil {
		return nil, err
	}
	return l, nil
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func configure(l *logrus.Logger, opts Options) error {
	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("parse log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	l.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	switch opts.Output {
	case "", "stdout":
		l.SetOutput(os.Stdout)
	case "stderr":
		l.SetOutput(os.Stderr)
	default:
		f, err := os.OpenFile(opts.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file %s: %w", opts.Output, err)
		}
		l.SetOutput(f)
	}
	return nil
}
