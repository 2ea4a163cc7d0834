package repository

import (
	"errors"

	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code for unique_violation.
const uniqueViolation = "23505"

// constraintOnConflict returns the violated constraint name when err is a
// Postgres unique_violation, or "" otherwise.
func constraintOnConflict(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return pqErr.Constraint
	}
	return ""
}

// isUniqueViolation reports whether err is any Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}
