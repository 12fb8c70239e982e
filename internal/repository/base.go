// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// DefaultQueryTimeout bounds a repository call when no timeout is configured.
const DefaultQueryTimeout = 5 * time.Second

const pgUniqueViolation = "23505"

// store is embedded by every repository. Each call gets its own deadline,
// span and latency sample.
type store struct {
	db      *gorm.DB
	timeout time.Duration
	table   string
	log     *observability.StoreLogger
}

func newStore(db *gorm.DB, timeout time.Duration, table string) store {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return store{
		db:      db,
		timeout: timeout,
		table:   table,
		log:     observability.NewStoreLogger(table, middleware.Logger),
	}
}

// run executes fn against a deadline-bound session. Errors are returned
// untranslated except for deadline expiry, which always surfaces as
// SERVICE_UNAVAILABLE.
func (s store) run(ctx context.Context, op string, fn func(db *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, span := observability.StartRepositorySpan(ctx, op, s.table)
	done := observability.TrackQuery(op, s.table)
	err := fn(s.db.WithContext(ctx))
	done()

	if err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)) {
		observability.DatabaseQueryTimeouts.WithLabelValues(op, s.table).Inc()
		err = models.NewUnavailableError(err)
	}
	observability.EndSpan(span, err, isExpectedOutcome)

	if err != nil && !isExpectedOutcome(err) {
		s.log.Failed(ctx, op, err)
	}
	return err
}

// isExpectedOutcome reports store errors that are part of normal control
// flow rather than failures.
func isExpectedOutcome(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || isUniqueViolation(err)
}

// translateError maps store errors onto AppError codes.
func translateError(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}

	var appErr *models.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.NewNotFoundError(resource, id)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return models.NewNotFoundError(resource, id)
	case isUniqueViolation(err):
		return models.NewConflictError(resource + " already exists")
	default:
		return models.NewInternalError(err)
	}
}

// isUniqueViolation checks if a DB error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, pgUniqueViolation)
}

func paginate(db *gorm.DB, page models.Page) *gorm.DB {
	if page.Limit > 0 {
		db = db.Limit(page.Limit)
	}
	if page.Offset > 0 {
		db = db.Offset(page.Offset)
	}
	return db
}

// escapeLike escapes LIKE wildcards so q matches literally. The escape
// character is a backslash, declared with ESCAPE in the query.
func escapeLike(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(q)
}
