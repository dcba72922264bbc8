package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/candidate-matcher/internal/engine"
	"github.com/jonathan/candidate-matcher/internal/model"
	"github.com/jonathan/candidate-matcher/internal/store"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// validationError converts validator field errors into an ErrValidation naming
// every failing field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	fields := make([]string, len(fieldErrs))
	messages := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		fields[i] = fe.Namespace()
		messages[i] = fe.Field() + " failed " + fe.Tag()
	}
	return &ErrValidation{Field: strings.Join(fields, ", "), Message: strings.Join(messages, "; ")}
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validationErr *ErrValidation
	var inputErr *engine.InputError
	switch {
	case errors.As(err, &validationErr), errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrTrainingInProgress):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
