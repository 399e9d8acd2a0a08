package repo

import (
	"errors"

	"github.com/lib/pq"
)

// pq error code for unique_violation.
const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a postgres unique-constraint violation.
// Concurrent inserts can pass an existence pre-check and still collide here, so
// callers must treat this as a duplicate rather than an internal failure.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}
