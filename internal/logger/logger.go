// Package logger builds the process-wide structured logger every
// command and long-lived package logs through. A process calls Init
// once at startup from the resolved config.Config and reads
// slog.Default() (or a sub-logger off it) everywhere else rather than
// constructing its own handler.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Log is the process-wide logger, set by Init. Package-level helpers
// below all route through it.
var Log *slog.Logger

// Init builds the process logger from a level ("debug", "info",
// "warn", "error"), an output format ("json" or anything else for
// text), and an optional file path additionally written alongside
// stdout. It installs the result as both Log and slog.Default so
// packages that take a *slog.Logger via slog.Default() pick it up
// without an explicit wire.
func Init(level, format, logFile string) error {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	writers := []io.Writer{os.Stdout}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		writers = append(writers, f)
	}
	out := io.MultiWriter(writers...)

	opts := &slog.HandlerOptions{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("time", a.Value.Time().Format("15:04:05"))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	Log = slog.New(handler).With("component", "aether")
	slog.SetDefault(Log)
	return nil
}

// ForCapsule returns a sub-logger tagged with a capsule's path, so
// every line it emits is attributable when more than one capsule is
// open in the same process.
func ForCapsule(path string) *slog.Logger {
	return Log.With("capsule", path)
}

func Debug(msg string, args ...any) { Log.Debug(msg, args...) }
func Info(msg string, args ...any)  { Log.Info(msg, args...) }
func Warn(msg string, args ...any)  { Log.Warn(msg, args...) }
func Error(msg string, args ...any) { Log.Error(msg, args...) }
