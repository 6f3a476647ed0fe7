// Package logger wraps a process-wide logrus logger configured from flags
// or the LOG_LEVEL and LOG_FORMAT environment variables.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	defaultLogger *logrus.Logger
	mu            sync.Mutex
)

// Init configures the global logger. level is one of debug, info, warn or
// error; json selects the JSON formatter over the text formatter.
func Init(level string, json bool) {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(parseLevel(level))
	if json {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	mu.Lock()
	defaultLogger = l
	mu.Unlock()
}

// InitFromEnv configures the logger from LOG_LEVEL and LOG_FORMAT
func InitFromEnv() {
	Init(os.Getenv("LOG_LEVEL"), strings.EqualFold(os.Getenv("LOG_FORMAT"), "json"))
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Get returns the global logger, initializing it with defaults on first use
func Get() *logrus.Logger {
	mu.Lock()
	l := defaultLogger
	mu.Unlock()
	if l == nil {
		InitFromEnv()
		mu.Lock()
		l = defaultLogger
		mu.Unlock()
	}
	return l
}

// SetOutput redirects the global logger, mainly for tests and stdio mode
// where stdout carries protocol traffic.
func SetOutput(w io.Writer) {
	Get().SetOutput(w)
}

// fields turns alternating key/value args into logrus fields
func fields(args []any) logrus.Fields {
	f := make(logrus.Fields, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key := fmt.Sprint(args[i])
		if i+1 >= len(args) {
			f["!BADKEY"] = key
			break
		}
		f[key] = args[i+1]
	}
	return f
}

func Info(msg string, args ...any) {
	Get().WithFields(fields(args)).Info(msg)
}

func Debug(msg string, args ...any) {
	Get().WithFields(fields(args)).Debug(msg)
}

func Warn(msg string, args ...any) {
	Get().WithFields(fields(args)).Warn(msg)
}

func Error(msg string, args ...any) {
	Get().WithFields(fields(args)).Error(msg)
}

// Fatal logs at error level and exits
func Fatal(msg string, args ...any) {
	Get().WithFields(fields(args)).Error(msg)
	os.Exit(1)
}

// With returns an entry carrying the given key/value pairs
func With(args ...any) *logrus.Entry {
	return Get().WithFields(fields(args))
}
