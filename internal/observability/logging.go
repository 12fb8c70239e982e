// Package observability holds the store's log, metric and trace helpers.
package observability

import (
	"context"
	"log/slog"
)

// StoreLogger records writes and failures of one table's repository.
type StoreLogger struct {
	table string
	log   *slog.Logger
}

// NewStoreLogger falls back to slog.Default when l is nil.
func NewStoreLogger(table string, l *slog.Logger) *StoreLogger {
	if l == nil {
		l = slog.Default()
	}
	return &StoreLogger{table: table, log: l.With(slog.String("table", table))}
}

// Changed logs a committed write such as "create" or "delete".
func (l *StoreLogger) Changed(ctx context.Context, op string, attrs ...slog.Attr) {
	l.log.LogAttrs(ctx, slog.LevelInfo, l.table+" "+op, append(attrs, slog.String("operation", op))...)
}

// Failed logs an unexpected store error.
func (l *StoreLogger) Failed(ctx context.Context, op string, err error) {
	l.log.LogAttrs(ctx, slog.LevelError, "store failure",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}
