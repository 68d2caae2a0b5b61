// Package pgerr classifies postgres driver errors.
package pgerr

import (
	"errors"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
