package logging

import (
	"os"
	"sync/atomic"
)

// global is swapped by Configure while scheduler and watcher goroutines may be logging
var global atomic.Pointer[Logger]

func init() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	global.Store(New(Config{
		Level:       level,
		Output:      os.Stdout,
		EnableColor: os.Getenv("LOG_COLOR") != "false",
	}))
}

// Default returns the process-wide logger
func Default() *Logger {
	return global.Load()
}

// Configure replaces the process-wide logger. Loggers derived earlier with
// WithPrefix keep their old settings, so call it before building components.
func Configure(config Config) {
	global.Store(New(config))
}

func Debugf(format string, args ...interface{}) { Default().Debugf(format, args...) }

func Info(args ...interface{}) { Default().Info(args...) }

func Infof(format string, args ...interface{}) { Default().Infof(format, args...) }

func Warnf(format string, args ...interface{}) { Default().Warnf(format, args...) }

func Errorf(format string, args ...interface{}) { Default().Errorf(format, args...) }

// Fatalf logs at FATAL and exits the process
func Fatalf(format string, args ...interface{}) { Default().Fatalf(format, args...) }

// WithPrefix returns a component logger, e.g. logging.WithPrefix("Coordinator")
func WithPrefix(prefix string) *Logger {
	return Default().WithPrefix(prefix)
}

// WithField returns a logger carrying key=value on every line
func WithField(key string, value interface{}) *Logger {
	return Default().WithField(key, value)
}
