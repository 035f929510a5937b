// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// LoggingConfig defines which types of automated logging are enabled.
type LoggingConfig struct {
	EnableRepoLogging    bool
	EnableServiceLogging bool
}

// Config holds the current logging configuration.
var Config = LoggingConfig{
	EnableRepoLogging:    true,
	EnableServiceLogging: true,
}

// traceAttrs returns the trace id of the active span, if any, so log lines
// can be joined with exported traces.
func traceAttrs(ctx context.Context) []any {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []any{slog.String("trace_id", sc.TraceID().String())}
}

func withFields(attrs []any, fields map[string]any) []any {
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	return attrs
}

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	store  string
	table  string
	logger *Logger
}

// NewRepoLogger creates a RepoLogger for a table (or collection) in store.
func NewRepoLogger(store, table string) *RepoLogger {
	return &RepoLogger{
		store:  store,
		table:  table,
		logger: GlobalLogger,
	}
}

func (l *RepoLogger) log(ctx context.Context, operation string, fields map[string]any) {
	if !Config.EnableRepoLogging {
		return
	}
	attrs := []any{
		slog.String("store", l.store),
		slog.String("table", l.table),
		slog.String("operation", operation),
	}
	attrs = append(attrs, traceAttrs(ctx)...)
	l.logger.DebugContext(ctx, "repository "+operation, withFields(attrs, fields)...)
}

// LogCreate logs a repository create operation.
func (l *RepoLogger) LogCreate(ctx context.Context, fields map[string]any) {
	l.log(ctx, "create", fields)
}

// LogUpdate logs a repository update operation.
func (l *RepoLogger) LogUpdate(ctx context.Context, fields map[string]any) {
	l.log(ctx, "update", fields)
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	if !Config.EnableRepoLogging {
		return
	}
	attrs := []any{
		slog.String("store", l.store),
		slog.String("table", l.table),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	}
	attrs = append(attrs, traceAttrs(ctx)...)
	l.logger.ErrorContext(ctx, "repository error", attrs...)
}

// StructuredLogger logs service-level events.
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new StructuredLogger instance.
func NewStructuredLogger() *StructuredLogger {
	return &StructuredLogger{logger: GlobalLogger}
}

// LogServiceCall logs a service method call.
func (l *StructuredLogger) LogServiceCall(ctx context.Context, service, method string, fields map[string]any) {
	if !Config.EnableServiceLogging {
		return
	}
	attrs := []any{
		slog.String("service", service),
		slog.String("method", method),
		slog.String("type", "service_call"),
	}
	attrs = append(attrs, traceAttrs(ctx)...)
	l.logger.InfoContext(ctx, "service call", withFields(attrs, fields)...)
}

// LogServiceError logs a failed service call.
func (l *StructuredLogger) LogServiceError(ctx context.Context, service, method string, err error) {
	attrs := []any{
		slog.String("service", service),
		slog.String("method", method),
		slog.String("error", err.Error()),
	}
	attrs = append(attrs, traceAttrs(ctx)...)
	l.logger.ErrorContext(ctx, "service error", attrs...)
}
