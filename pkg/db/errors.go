package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a unique constraint failure on
// postgres or sqlite.
func IsUniqueViolation(err error) bool {
	return matches(err, pgUniqueViolation, "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err is a foreign key failure on
// postgres or sqlite.
func IsForeignKeyViolation(err error) bool {
	return matches(err, pgForeignKeyViolation, "FOREIGN KEY constraint failed")
}

func matches(err error, pgCode, sqliteText string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgCode
	}
	return strings.Contains(err.Error(), sqliteText)
}
