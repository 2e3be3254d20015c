package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// ── Logger construction ──────────────────────────────────────────────────────

// Options controls how the application logger is built.
type Options struct {
	// Level is a logrus level name: "debug", "info", "warn", "error".
	// Unknown or empty values fall back to "info".
	Level string

	// Channel appears on every entry as the "channel" field —
	// mirrors Laravel's log channel name.
	Channel string

	// Out is the destination writer. Defaults to os.Stderr.
	Out io.Writer

	// JSON switches the formatter to logrus.JSONFormatter.
	JSON bool
}

// New builds a configured *logrus.Logger.
//
//	log := logging.New(logging.Options{Level: cfg.Log.Level, Channel: cfg.Log.Channel})
//	log.WithField("abstract", "cache").Debug("resolved")
func New(opts Options) *logrus.Logger {
	log := logrus.New()

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	log.SetOutput(out)
	log.SetLevel(parseLevel(opts.Level))

	if opts.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log
}

// Discard returns a logger that drops every entry. Used as the default
// logger for components whose callers did not supply one.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// Channel wraps a logger with a fixed "channel" field —
// Laravel: Log::channel('stack').
func Channel(log *logrus.Logger, name string) logrus.FieldLogger {
	return log.WithField("channel", name)
}

func parseLevel(name string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "trace":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
