// Package postgres opens the instrumented connection pool and translates
// driver errors into domain error kinds.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/lib/pq"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/telemetry"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Open connects to dsn with every pooled connection using schema as its
// search_path.
func Open(ctx context.Context, dsn, schema string) (*sql.DB, error) {
	if schema != "" {
		var err error
		dsn, err = withSearchPath(dsn, schema)
		if err != nil {
			return nil, err
		}
	}

	db, err := telemetry.OpenDB("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func withSearchPath(dsn, schema string) (string, error) {
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return dsn + " search_path=" + schema, nil
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Translate maps a unique violation to domain.ErrConflict carrying reason,
// a foreign key violation to a validation error, and wraps anything else
// with op.
func Translate(err error, op, reason string) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return domain.Conflict(reason)
		case foreignKeyViolation:
			return domain.Invalid("", "referenced record does not exist")
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// RequireAffected returns a NotFound error for entity when result touched no rows.
func RequireAffected(result sql.Result, entity string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound(entity)
	}
	return nil
}
