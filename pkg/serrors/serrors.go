package serrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure independently of the HTTP status it maps to.
type Kind string

const (
	KindValidation Kind = "validation_error"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindTransient  Kind = "transient_infrastructure"
	KindForbidden  Kind = "forbidden"
	KindInternal   Kind = "internal"
)

type ServiceError struct {
	Status  int
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

func New(status int, kind Kind, code, message string, cause error) *ServiceError {
	return &ServiceError{Status: status, Kind: kind, Code: code, Message: message, Cause: cause}
}

func Validation(code, message string) *ServiceError {
	return New(http.StatusBadRequest, KindValidation, code, message, nil)
}

func NotFound(code, message string) *ServiceError {
	return New(http.StatusNotFound, KindNotFound, code, message, nil)
}

func Conflict(status int, code, message string, cause error) *ServiceError {
	return New(status, KindConflict, code, message, cause)
}

func Transient(code, message string, cause error) *ServiceError {
	return New(http.StatusBadGateway, KindTransient, code, message, cause)
}

func Internal(code string, cause error) *ServiceError {
	return New(http.StatusInternalServerError, KindInternal, code, "internal server error", cause)
}

// As extracts a *ServiceError from err's chain.
func As(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

func IsKind(err error, kind Kind) bool {
	svcErr, ok := As(err)
	return ok && svcErr.Kind == kind
}
