package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/competency-model/internal/competency"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// A ConversionError maps to 422: the request was fine, the stored
// catalog value is not numeric.
func HTTPStatus(err error) int {
	var validationErr *ErrValidation
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}

	var conversionErr *competency.ConversionError
	if errors.As(err, &conversionErr) {
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}
