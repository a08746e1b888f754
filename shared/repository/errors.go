package repository

import (
	"errors"
	"restobook/shared/constant"
	"restobook/shared/failure"

	"github.com/lib/pq"
)

// TranslateError maps constraint violations raised by postgres to failures
// the transport layer can answer with. Anything else is returned unchanged.
func TranslateError(entity string, err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case constant.PqErrorCodeUniqueViolation:
		return failure.Conflict(entity + " already exists") // nolint:wrapcheck
	case constant.PqErrorCodeFkViolation:
		return failure.NotFound(entity + " references a record that does not exist") // nolint:wrapcheck
	default:
		return err
	}
}
