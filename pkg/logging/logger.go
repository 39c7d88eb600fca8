package logging

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// Logger wraps the charmbracelet logger used across voxrelay.
type Logger struct {
	*log.Logger
}

var (
	logger *Logger
	once   sync.Once
)

// CreateLogger sets up the process logger. DEBUG=1 turns on debug level,
// caller reporting and timestamps.
func CreateLogger() {
	once.Do(func() {
		logger = &Logger{Logger: newBaseLogger(os.Stderr, os.Getenv("DEBUG") == "1")}
	})
}

func newBaseLogger(w io.Writer, debug bool) *log.Logger {
	if !debug {
		base := log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			Prefix:          "voxrelay",
		})
		base.SetLevel(log.InfoLevel)
		return base
	}

	base := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "voxrelay",
	})
	base.SetLevel(log.DebugLevel)
	return base
}

// SetOutput replaces the process logger, mostly for tests.
func SetOutput(w io.Writer, debug bool) {
	ensureInitialized()
	logger = &Logger{Logger: newBaseLogger(w, debug)}
}

// Debug logs debug messages if debug logging is enabled.
func Debug(msg interface{}, keyvals ...interface{}) {
	ensureInitialized()
	logger.Debug(msg, keyvals...)
}

// Info logs informational messages.
func Info(msg interface{}, keyvals ...interface{}) {
	ensureInitialized()
	logger.Info(msg, keyvals...)
}

// Warn logs warning messages.
func Warn(msg interface{}, keyvals ...interface{}) {
	ensureInitialized()
	logger.Warn(msg, keyvals...)
}

// Error logs error messages.
func Error(msg interface{}, keyvals ...interface{}) {
	ensureInitialized()
	logger.Error(msg, keyvals...)
}

// Fatal logs a fatal message and exits the program.
func Fatal(msg interface{}, keyvals ...interface{}) {
	ensureInitialized()
	logger.Fatal(msg, keyvals...)
}

// GetLogger returns the process Logger.
func GetLogger() *Logger {
	ensureInitialized()
	return logger
}

func ensureInitialized() {
	if logger == nil {
		CreateLogger()
	}
}
