package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/apperr"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNumericOutOfRange   = "22003"
)

func IsUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

func IsCheckViolation(err error) bool {
	return pgCode(err) == codeCheckViolation
}

func IsNumericOutOfRange(err error) bool {
	return pgCode(err) == codeNumericOutOfRange
}

// InvalidInput reports a CHECK or numeric range failure as a ValidationError on
// field. It returns nil for any other error.
func InvalidInput(err error, field string) *apperr.ValidationError {
	switch pgCode(err) {
	case codeCheckViolation, codeNumericOutOfRange:
		return apperr.Invalid(field, "is out of the allowed range")
	default:
		return nil
	}
}

// ConstraintName returns the violated constraint, or "" for non-postgres errors.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
