// internal/storage/errors.go
package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/Annany2002/projecthub-backend/internal/logger"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrEmailExists     = errors.New("email already in use")
	ErrUserNameExists  = errors.New("user already exists")
	ErrProjectExists   = errors.New("project with this title already exists for this user")

	// ErrStorage is the only error a storage fault surfaces as; the raw
	// driver error is logged, never returned.
	ErrStorage = errors.New("storage error")
)

var customLog = logger.NewLogger()

func storageFault(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		customLog.Infof("Storage: %s cancelled: %v", op, err)
	} else {
		customLog.Warnf("Storage: %s failed: %v", op, err)
	}
	return ErrStorage
}

// uniqueViolation reports whether err is a unique-constraint failure and,
// if so, the constraint or column text the driver named.
func uniqueViolation(err error) (string, bool) {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return sqliteErr.Error(), true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// userConflict maps a unique violation on the users table to its sentinel.
func userConflict(err error) error {
	detail, ok := uniqueViolation(err)
	if !ok {
		return nil
	}
	if strings.Contains(detail, "user_name") {
		return ErrUserNameExists
	}
	return ErrEmailExists
}
