package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/contact-discovery/internal/crawling"
)

// ErrUnavailable is returned when an endpoint needs storage and none is configured
var ErrUnavailable = errors.New("discovery storage is not configured")

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a stored discovery run does not exist
type ErrNotFound struct {
	RunID uuid.UUID
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("discovery not found: %s", e.RunID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		notFoundErr   *ErrNotFound
		emptyErr      *crawling.EmptyInputError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &emptyErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// validationError converts validator output into an ErrValidation for the first failing field
func validationError(err error) *ErrValidation {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ErrValidation{Field: fe.Field(), Message: "failed " + fe.Tag() + " check"}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}
