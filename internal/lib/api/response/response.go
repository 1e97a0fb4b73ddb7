package response

import (
	"fmt"
	"github.com/go-playground/validator/v10"
	"strings"
)

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// FieldError describes a single rejected field of a submitted document.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Duplicate describes a field whose value collides with an existing document.
type Duplicate struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

const (
	StatusOK    = "OK"
	StatusError = "Error"
)

func OK() Response {
	return Response{
		Status: StatusOK,
	}
}

func OKWithMessage(msg string) Response {
	return Response{
		Status:  StatusOK,
		Message: msg,
	}
}

func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// Failure carries both a short human-readable message and a detail string.
func Failure(msg, detail string) Response {
	return Response{
		Status:  StatusError,
		Message: msg,
		Error:   detail,
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errMsgs []string

	for _, err := range errs {
		errMsgs = append(errMsgs, fieldMessage(err))
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMsgs, ", "),
	}
}

// FieldErrors converts validator errors into one entry per failed field.
func FieldErrors(errs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for _, err := range errs {
		out = append(out, FieldError{
			Field:   err.Field(),
			Message: fieldMessage(err),
		})
	}

	return out
}

func fieldMessage(err validator.FieldError) string {
	switch err.ActualTag() {
	case "required":
		return fmt.Sprintf("field %s is a required field", err.Field())
	case "email":
		return fmt.Sprintf("field %s is not a valid email", err.Field())
	case "max":
		return fmt.Sprintf("field %s cannot exceed %s characters", err.Field(), err.Param())
	case "min":
		return fmt.Sprintf("field %s needs at least %s item(s)", err.Field(), err.Param())
	case "oneof":
		return fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param())
	default:
		return fmt.Sprintf("field %s is not valid", err.Field())
	}
}
