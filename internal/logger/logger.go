// Package logger writes each binary's log to its own rotating file under the
// config directory.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultName = "peakstreak"

var (
	// Logger is the global logger instance
	Logger *log.Logger
)

// Config holds logger configuration
type Config struct {
	Debug     bool
	ConfigDir string
	// Name is the log file stem and prefix
	Name string
}

// Path returns the log file of the named binary.
func Path(configDir, name string) string {
	if name == "" {
		name = defaultName
	}
	return filepath.Join(configDir, "logs", name+".log")
}

// Init initializes the global logger with the given configuration
func Init(cfg Config) error {
	// Make sure the log directory exists
	logFile := Path(cfg.ConfigDir, cfg.Name)
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return err
	}

	// Rotate at 10 MB, keep three compressed files for four weeks
	fileWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	// Debug lowers the level and tees to stderr
	level := log.WarnLevel
	var writer io.Writer = fileWriter
	if cfg.Debug {
		level = log.DebugLevel
		writer = io.MultiWriter(os.Stderr, fileWriter)
	}

	prefix := cfg.Name
	if prefix == "" {
		prefix = defaultName
	}
	Logger = log.NewWithOptions(writer, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          prefix,
	})

	return nil
}

// Component returns a child logger tagged with the component name. Before
// Init it returns a logger that discards everything.
func Component(name string) *log.Logger {
	if Logger == nil {
		return log.New(io.Discard)
	}
	return Logger.With("component", name)
}

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error message
func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
