package log

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

var Logger zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}

	Logger = zerolog.New(output).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()

	zlog.Logger = Logger
}

// SetupFile tees log output into a logfile under dir (created if missing).
// The console writer stays attached so interactive runs keep their output.
func SetupFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "sysmon.log")
	logfile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0660)
	if err != nil {
		return nil, err
	}
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	Logger = zerolog.New(io.MultiWriter(console, logfile)).
		Level(Logger.GetLevel()).
		With().
		Timestamp().
		Logger()
	zlog.Logger = Logger
	return logfile, nil
}

// Quiet drops the console writer, keeping only the logfile (if configured).
// Used by the TUI so log lines do not corrupt the terminal grid.
func Quiet(logfile *os.File) {
	var out io.Writer = io.Discard
	if logfile != nil {
		out = logfile
	}
	Logger = zerolog.New(out).
		Level(Logger.GetLevel()).
		With().
		Timestamp().
		Logger()
	zlog.Logger = Logger
}

// Info logs an info message.
func Info() *zerolog.Event {
	return Logger.Info()
}

// Error logs an error message.
func Error() *zerolog.Event {
	return Logger.Error()
}

// Warn logs a warning message.
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Debug logs a debug message.
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Fatal logs a fatal message and exits.
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}

// SetDebugMode switches the logger to debug level.
func SetDebugMode() {
	Logger = Logger.Level(zerolog.DebugLevel)
	zlog.Logger = Logger
}
