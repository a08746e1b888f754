package validator

import (
	"errors"
	"reflect"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required":    "{field} is required",
	"gt":          "{field} must be greater than {param}",
	"gte":         "{field} must be greater than or equal to {param}",
	"lte":         "{field} must be less than or equal to {param}",
	"oneof":       "{field} must be one of {param}",
	"max":         "{field} must be less than or equal to {param}",
	"min":         "{field} must be greater than or equal to {param}",
	"email":       "{field} must be a valid email address",
	"clock":       "{field} must be a time of day in HH:MM format",
	"date":        "{field} must be a date in YYYY-MM-DD format",
	"mimetypes":   "{field} must be one of {param}",
	"maxfilesize": "{field} must not exceed {param} MB",
	"gtfield":     "{field} must be after {param}",
}

// Length rules read differently on text fields.
var stringMessages = map[string]string{
	"max": "{field} must be at most {param} characters",
	"min": "{field} must be at least {param} characters",
}

// message renders the first failed rule. Rules without a template fall back
// to the validator's own wording.
func message(err error) string {
	var valErrors val.ValidationErrors
	if !errors.As(err, &valErrors) || len(valErrors) == 0 {
		return err.Error()
	}

	for _, fieldErr := range valErrors {
		if text := render(fieldErr); text != "" {
			return text
		}
	}

	return valErrors.Error()
}

func render(fieldErr val.FieldError) string {
	template, ok := stringMessages[fieldErr.Tag()]
	if !ok || fieldErr.Kind() != reflect.String {
		template = messages[fieldErr.Tag()]
	}

	if template == "" {
		return ""
	}

	return strings.NewReplacer("{field}", fieldErr.Field(), "{param}", fieldErr.Param()).Replace(template)
}
