package procrun

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

// LogLevel represents the severity of a log entry.
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// ParseLogLevel maps a textual level (case-insensitive) to a LogLevel,
// falling back to WARN for anything it does not recognize.
func ParseLogLevel(value string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "DEBUG":
		return LogLevelDebug
	case "INFO":
		return LogLevelInfo
	case "ERROR":
		return LogLevelError
	default:
		return LogLevelWarn
	}
}

// LogField represents a key-value pair in structured logging.
type LogField struct {
	Key   string
	Value any
}

// Field creates a LogField from a key-value pair.
func Field(key string, value any) LogField {
	return LogField{Key: key, Value: value}
}

// Logger provides structured logging for the executor. Implementations must
// be safe for concurrent use.
type Logger interface {
	Debug(msg string, fields ...LogField)
	Info(msg string, fields ...LogField)
	Warn(msg string, fields ...LogField)
	Error(msg string, err error, fields ...LogField)
	WithFields(fields ...LogField) Logger
}

// NoOpLogger is a logger that discards all log entries.
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(_ string, _ ...LogField)          {}
func (n *NoOpLogger) Info(_ string, _ ...LogField)           {}
func (n *NoOpLogger) Warn(_ string, _ ...LogField)           {}
func (n *NoOpLogger) Error(_ string, _ error, _ ...LogField) {}
func (n *NoOpLogger) WithFields(_ ...LogField) Logger        { return n }

// StdLogger writes structured log entries to a writer.
type StdLogger struct {
	fields   []LogField
	minLevel LogLevel
	logger   *log.Logger
	writer   io.Writer
}

// NewStdLogger creates a new logger with the specified minimum log level and
// writer. If writer is nil, logs are discarded.
func NewStdLogger(minLevel LogLevel, writer io.Writer) *StdLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &StdLogger{
		minLevel: minLevel,
		logger:   log.New(writer, "", 0), // No prefix, we format our own
		writer:   writer,
	}
}

func (s *StdLogger) log(level LogLevel, msg string, err error, fields ...LogField) {
	if !s.shouldLog(level) {
		return
	}

	allFields := append(s.fields, fields...)

	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", time.Now().Format(time.RFC3339)))
	parts = append(parts, fmt.Sprintf("[%s]", level))
	if err != nil {
		parts = append(parts, fmt.Sprintf("[error=%q]", err.Error()))
	}
	parts = append(parts, msg)

	if len(allFields) > 0 {
		var fieldParts []string
		for _, f := range allFields {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", f.Key, f.Value))
		}
		parts = append(parts, fmt.Sprintf("fields=[%s]", strings.Join(fieldParts, " ")))
	}

	s.logger.Println(strings.Join(parts, " "))
}

func (s *StdLogger) shouldLog(level LogLevel) bool {
	levels := map[LogLevel]int{
		LogLevelDebug: 0,
		LogLevelInfo:  1,
		LogLevelWarn:  2,
		LogLevelError: 3,
	}
	return levels[level] >= levels[s.minLevel]
}

func (s *StdLogger) Debug(msg string, fields ...LogField) {
	s.log(LogLevelDebug, msg, nil, fields...)
}

func (s *StdLogger) Info(msg string, fields ...LogField) {
	s.log(LogLevelInfo, msg, nil, fields...)
}

func (s *StdLogger) Warn(msg string, fields ...LogField) {
	s.log(LogLevelWarn, msg, nil, fields...)
}

func (s *StdLogger) Error(msg string, err error, fields ...LogField) {
	s.log(LogLevelError, msg, err, fields...)
}

func (s *StdLogger) WithFields(fields ...LogField) Logger {
	return &StdLogger{
		fields:   append(s.fields, fields...),
		minLevel: s.minLevel,
		logger:   s.logger,
		writer:   s.writer,
	}
}
