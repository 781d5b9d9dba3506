package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"pdf-slide-synth/internal/domain"

	"github.com/rs/zerolog"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

const badKey = "!BADKEY"

// Options configures a logger.
type Options struct {
	Level   string
	Format  string // console or json
	Service string
	Output  io.Writer
}

// AppLogger implements the domain.Logger interface
type AppLogger struct {
	level  LogLevel
	logger zerolog.Logger
}

// NewLogger creates a new console logger at the given level.
func NewLogger(levelStr string) domain.Logger {
	return New(Options{Level: levelStr})
}

// New creates a logger from options.
func New(opts Options) *AppLogger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if !strings.EqualFold(opts.Format, "json") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "2006-01-02 15:04:05", NoColor: opts.Output != nil}
	}
	service := opts.Service
	if service == "" {
		service = "slide-synth"
	}

	level := parseLogLevel(opts.Level)
	zl := zerolog.New(out).
		Level(level.zerolog()).
		With().
		Timestamp().
		Str("service", service).
		Logger()

	return &AppLogger{level: level, logger: zl}
}

// Info logs an info message
func (l *AppLogger) Info(msg string, fields ...interface{}) {
	l.log(l.logger.Info(), msg, fields...)
}

// Error logs an error message
func (l *AppLogger) Error(msg string, err error, fields ...interface{}) {
	l.log(l.logger.Error().Err(err), msg, fields...)
}

// Debug logs a debug message
func (l *AppLogger) Debug(msg string, fields ...interface{}) {
	l.log(l.logger.Debug(), msg, fields...)
}

// Warn logs a warning message
func (l *AppLogger) Warn(msg string, fields ...interface{}) {
	l.log(l.logger.Warn(), msg, fields...)
}

// log attaches key/value pairs to the event. A trailing key without a value
// is recorded under badKey.
func (l *AppLogger) log(evt *zerolog.Event, msg string, fields ...interface{}) {
	if evt == nil {
		return
	}
	for i := 0; i < len(fields); i += 2 {
		if i+1 >= len(fields) {
			evt = evt.Interface(badKey, fields[i])
			break
		}
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprint(fields[i])
		}
		if err, isErr := fields[i+1].(error); isErr {
			evt = evt.AnErr(key, err)
			continue
		}
		evt = evt.Interface(key, fields[i+1])
	}
	evt.Msg(msg)
}

func (lvl LogLevel) zerolog() zerolog.Level {
	switch lvl {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// parseLogLevel converts string log level to LogLevel enum
func parseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}
