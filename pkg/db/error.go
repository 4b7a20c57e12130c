package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Store error classes, used as a log field.
const (
	ErrClassDuplicateKey = "duplicate_key"
	ErrClassForeignKey   = "foreign_key"
	ErrClassCheck        = "check_violation"
	ErrClassTimeout      = "timeout"
	ErrClassUnknown      = "unknown"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// PostgreSQL (error code 23505)
	if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}

func IsForeignKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	// PostgreSQL (error code 23503)
	if strings.Contains(err.Error(), "violates foreign key constraint") {
		return true
	}

	// SQLite (error code 787)
	if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
		return true
	}

	return false
}

func IsCheckErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}

	// PostgreSQL (error code 23514) and SQLite (error code 275)
	msg := err.Error()
	return strings.Contains(msg, "violates check constraint") || strings.Contains(msg, "CHECK constraint failed")
}

// Classify names the class of a store error. It never drives control flow:
// every class is surfaced to the caller the same way.
func Classify(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrClassDuplicateKey
		case "23503":
			return ErrClassForeignKey
		case "23514":
			return ErrClassCheck
		case "57014":
			return ErrClassTimeout
		}
	}

	switch {
	case err == nil:
		return ""
	case IsDuplicateKeyErr(err):
		return ErrClassDuplicateKey
	case IsForeignKeyErr(err):
		return ErrClassForeignKey
	case IsCheckErr(err):
		return ErrClassCheck
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrClassTimeout
	default:
		return ErrClassUnknown
	}
}
