// Package validator provides struct validation utilities with custom
// validators for the quality domain enumerations.
package validator

import (
	stderrors "errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/qmshub/api/pkg/domain/finding"
)

// Validator wraps the go-playground validator with custom validations.
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a single field validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, e := range v {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return sb.String()
}

// New creates a new Validator with the domain validators registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("estado", validateEstado)
	_ = v.RegisterValidation("prioridad", validatePrioridad)
	_ = v.RegisterValidation("action_tipo", validateActionTipo)
	_ = v.RegisterValidation("action_estado", validateActionEstado)
	_ = v.RegisterValidation("tag_type", validateTagType)

	return &Validator{validate: v}
}

// Validate validates a struct and returns ValidationErrors if validation fails.
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		return err
	}

	result := make(ValidationErrors, 0, len(validationErrors))
	for _, e := range validationErrors {
		result = append(result, ValidationError{
			Field:   toSnakeCase(e.Field()),
			Message: formatErrorMessage(e),
		})
	}

	return result
}

// validateEstado validates that a string is a member of the canonical estado
// enumeration.
func validateEstado(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let 'required' handle empty values
	}
	_, err := finding.ParseEstado(value)
	return err == nil
}

// validatePrioridad validates that a string is a valid Prioridad.
func validatePrioridad(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := finding.ParsePrioridad(value)
	return err == nil
}

// validateActionTipo validates that a string is a valid ActionTipo.
func validateActionTipo(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := finding.ParseActionTipo(value)
	return err == nil
}

// validateActionEstado validates that a string is a valid ActionEstado.
func validateActionEstado(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := finding.ParseActionEstado(value)
	return err == nil
}

// validateTagType validates that a string is a valid TagType.
func validateTagType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := finding.ParseTagType(value)
	return err == nil
}

// formatErrorMessage turns a field error into a readable message.
func formatErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	case "estado":
		return "must be a valid estado"
	case "prioridad":
		return "must be a valid prioridad"
	case "action_tipo":
		return "must be inmediata or correctiva"
	case "action_estado":
		return "must be a valid action estado"
	case "tag_type":
		return "must be norma, documento or proceso"
	default:
		return fmt.Sprintf("failed validation: %s", e.Tag())
	}
}

// toSnakeCase converts a Go field name to its snake_case JSON form.
func toSnakeCase(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteRune('_')
			}
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
