// Package validation checks untrusted operation input before it reaches business logic.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/deskflow/helpdesk-api/pkg/util/errorutil"
)

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// Validator is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator that reports JSON field names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return sf.Name
		}
		return name
	})
	return &Validator{validate: v}
}

func (v *Validator) check(params any) error {
	err := v.validate.Struct(params)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperrors.NewValidationError("invalid input", map[string]any{"reason": err.Error()})
	}
	fields := make([]FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: message(fe.Tag(), fe.Param()),
		})
	}
	return apperrors.NewValidationError(summary(fields), map[string]any{"fields": fields})
}

func required(field string) error {
	fields := []FieldError{{Field: field, Rule: "required", Message: message("required", "")}}
	return apperrors.NewValidationError(summary(fields), map[string]any{"fields": fields})
}

func summary(fields []FieldError) string {
	if len(fields) == 0 {
		return "invalid input"
	}
	return fields[0].Field + " " + fields[0].Message
}

func message(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "must be at most " + param + " characters"
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "uuid4":
		return "must be a valid id"
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
