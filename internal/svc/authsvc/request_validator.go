package authsvc

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError lists the request fields that failed validation, keyed by JSON name.
type ValidationError struct {
	Fields map[string]string `json:"errors"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	messages := make([]string, 0, len(keys))
	for _, key := range keys {
		messages = append(messages, key+": "+e.Fields[key])
	}

	return "validation failed: " + strings.Join(messages, ", ")
}

// RequestValidator checks decoded request bodies against their `validate` tags.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a RequestValidator reporting fields by their JSON names.
func NewRequestValidator() *RequestValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return &RequestValidator{validate: validate}
}

// Validate returns a *ValidationError if v does not satisfy its tags.
func (rv *RequestValidator) Validate(v any) error {
	err := rv.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}

	fields := make(map[string]string, len(fieldErrs))

	for _, fieldErr := range fieldErrs {
		switch fieldErr.Tag() {
		case "required":
			fields[fieldErr.Field()] = "is required"
		case "email":
			fields[fieldErr.Field()] = "must be a valid email address"
		case "min":
			fields[fieldErr.Field()] = "must be at least " + fieldErr.Param() + " characters long"
		case "max":
			fields[fieldErr.Field()] = "must be at most " + fieldErr.Param() + " characters long"
		default:
			fields[fieldErr.Field()] = "is invalid"
		}
	}

	return &ValidationError{Fields: fields}
}
