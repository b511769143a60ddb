package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

type contextKey string

// CorrelationIDKey is the context key the HTTP layer stores the correlation ID under
const CorrelationIDKey contextKey = "correlation_id"

// Logger interface untuk structured logging
type Logger interface {
	Info(ctx context.Context, message string, fields map[string]interface{})
	Error(ctx context.Context, message string, err error, fields map[string]interface{})
	Warn(ctx context.Context, message string, fields map[string]interface{})
	Debug(ctx context.Context, message string, fields map[string]interface{})
	WithFields(fields map[string]interface{}) Logger
}

// structuredLogger implementasi Logger dengan logrus
type structuredLogger struct {
	logger *logrus.Logger
	fields map[string]interface{}
}

// LoggerConfig configuration untuk logger
type LoggerConfig struct {
	Level       string
	Format      string
	ServiceName string
	Output      io.Writer
}

// NewStructuredLogger membuat instance baru dari structured logger
func NewStructuredLogger(config LoggerConfig) Logger {
	return NewFromLogrus(NewLogrus(config), config.ServiceName)
}

// NewLogrus builds the logrus backend for adapters that log through logrus directly
func NewLogrus(config LoggerConfig) *logrus.Logger {
	logrusLogger := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrusLogger.SetLevel(level)

	if config.Format == "json" {
		logrusLogger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	} else {
		logrusLogger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339Nano,
			FullTimestamp:   true,
		})
	}

	if config.Output != nil {
		logrusLogger.SetOutput(config.Output)
	} else {
		logrusLogger.SetOutput(os.Stdout)
	}
	return logrusLogger
}

// NewFromLogrus wraps an existing logrus logger
func NewFromLogrus(l *logrus.Logger, serviceName string) Logger {
	fields := map[string]interface{}{}
	if serviceName != "" {
		fields["service"] = serviceName
	}
	return &structuredLogger{logger: l, fields: fields}
}

// Info logging untuk informational messages
func (l *structuredLogger) Info(ctx context.Context, message string, fields map[string]interface{}) {
	l.entry(ctx, nil, fields).Info(message)
}

// Error logging untuk error messages
func (l *structuredLogger) Error(ctx context.Context, message string, err error, fields map[string]interface{}) {
	l.entry(ctx, err, fields).Error(message)
}

// Warn logging untuk warning messages
func (l *structuredLogger) Warn(ctx context.Context, message string, fields map[string]interface{}) {
	l.entry(ctx, nil, fields).Warn(message)
}

// Debug logging untuk debug messages
func (l *structuredLogger) Debug(ctx context.Context, message string, fields map[string]interface{}) {
	l.entry(ctx, nil, fields).Debug(message)
}

// WithFields membuat logger baru dengan additional fields
func (l *structuredLogger) WithFields(fields map[string]interface{}) Logger {
	newFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &structuredLogger{
		logger: l.logger,
		fields: newFields,
	}
}

// entry builds a logrus entry carrying base fields, call fields, the
// correlation ID and the caller
func (l *structuredLogger) entry(ctx context.Context, err error, fields map[string]interface{}) *logrus.Entry {
	all := logrus.Fields{}
	for k, v := range l.fields {
		all[k] = v
	}
	for k, v := range fields {
		all[k] = v
	}

	if ctx != nil {
		if correlationID, ok := ctx.Value(CorrelationIDKey).(string); ok && correlationID != "" {
			all["correlation_id"] = correlationID
		}
	}

	if pc, file, line, ok := runtime.Caller(2); ok {
		all["caller"] = fmt.Sprintf("%s:%d %s", file, line, runtime.FuncForPC(pc).Name())
	}

	e := l.logger.WithFields(all)
	if err != nil {
		e = e.WithError(err)
	}
	if ctx != nil {
		e = e.WithContext(ctx)
	}
	return e
}

// WithCorrelationID stores a correlation ID on the context
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// LogAuditFailure reports an audit trail step that failed and was suppressed
func LogAuditFailure(ctx context.Context, logger Logger, step, action, resource string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["event_type"] = "audit"
	fields["audit_step"] = step
	fields["action"] = action
	fields["resource"] = resource

	logger.Error(ctx, fmt.Sprintf("Audit step failed: %s", step), err, fields)
}

// LogPerformance untuk performance metrics
func LogPerformance(ctx context.Context, logger Logger, operation string, duration time.Duration, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["event_type"] = "performance"
	fields["operation"] = operation
	fields["duration_ms"] = duration.Milliseconds()
	fields["duration_human"] = duration.String()

	logger.Info(ctx, fmt.Sprintf("Performance: %s took %s", operation, duration), fields)
}
