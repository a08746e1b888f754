// Package failure carries the HTTP status an error should surface as.
package failure

import (
	"errors"
	"fmt"
	"net/http"
)

type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`

	cause error
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}

func (e *Failure) Error() string {
	return e.Message
}

func (e *Failure) Unwrap() error {
	return e.cause
}

func newFailure(code int, message string, cause error) *Failure {
	return &Failure{Code: code, Message: message, cause: cause}
}

// BadRequest returns nil for a nil err so validator results can be passed straight through.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return newFailure(http.StatusBadRequest, err.Error(), err)
}

func BadRequestFromString(msg string) error {
	return newFailure(http.StatusBadRequest, msg, nil)
}

func Unauthorized(msg string) error {
	return newFailure(http.StatusUnauthorized, msg, nil)
}

func Forbidden(msg string) error {
	return newFailure(http.StatusForbidden, msg, nil)
}

func NotFound(msg string) error {
	return newFailure(http.StatusNotFound, msg, nil)
}

// NotFoundByID renders "<entity> not found with id: <id>".
func NotFoundByID(entity string, id int64) error {
	return newFailure(http.StatusNotFound, fmt.Sprintf("%s not found with id: %d", entity, id), nil)
}

func Conflict(msg string) error {
	return newFailure(http.StatusConflict, msg, nil)
}

func InternalError(err error) error {
	if err == nil {
		return nil
	}

	return newFailure(http.StatusInternalServerError, err.Error(), err)
}

// GetCode falls back to 500 for anything that is not a Failure, nil included.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// IsFailure reports whether err was classified by this package.
func IsFailure(err error) bool {
	var fail *Failure

	return errors.As(err, &fail)
}
