// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package validation wraps go-playground/validator v10 behind a process-wide
// singleton, translating field errors into the InvalidRequest shape the
// HTTP API returns (spec §6/§7).
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one struct field that failed validation.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Value   interface{}
	Message string
}

// Error implements the error interface for a single FieldError.
func (e FieldError) Error() string { return e.Message }

// RequestError collects every FieldError from one ValidateStruct call.
type RequestError struct {
	Fields []FieldError
}

func (e *RequestError) Error() string {
	if len(e.Fields) == 0 {
		return "validation: request failed validation"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return strings.Join(parts, "; ")
}

// Validator returns the singleton validator instance, initializing it on
// first use.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct validates s's `validate:"..."` tags, returning nil on
// success or a *RequestError describing every failed field.
func ValidateStruct(s interface{}) *RequestError {
	if err := Validator().Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &RequestError{Fields: []FieldError{{Field: "request", Tag: "unknown", Message: err.Error()}}}
		}

		fields := make([]FieldError, len(verrs))
		for i, fe := range verrs {
			fields[i] = FieldError{
				Field:   fe.Field(),
				Tag:     fe.Tag(),
				Param:   fe.Param(),
				Value:   fe.Value(),
				Message: translate(fe),
			}
		}
		return &RequestError{Fields: fields}
	}
	return nil
}

var simpleMessages = map[string]string{
	"required": "%s is required",
	"datetime": "%s must match the required date/time format",
	"oneof":    "%s must be one of the allowed values",
	"dive":     "%s has an invalid element",
}

func translate(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()

	if template, ok := simpleMessages[tag]; ok {
		return fmt.Sprintf(template, field)
	}

	isString := fe.Kind().String() == "string"
	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be >= %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be <= %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
