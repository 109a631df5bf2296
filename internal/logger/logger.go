// internal/logger/logger.go
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// std is shared by every package-level customLog so that Configure,
// called from main after package init, reaches all of them.
var std = newStd()

func newStd() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// NewLogger returns the process-wide logger.
func NewLogger() *logrus.Logger {
	return std
}

// Configure applies level ("debug", "info", "warn", ...) and format ("text" or "json").
// Unknown levels keep the current level.
func Configure(level, format string) {
	if lvl, err := logrus.ParseLevel(strings.TrimSpace(level)); err == nil {
		std.SetLevel(lvl)
	} else if level != "" {
		std.Warnf("Unknown LOG_LEVEL '%s', keeping %s", level, std.GetLevel())
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		std.SetFormatter(&logrus.JSONFormatter{})
	default:
		std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
