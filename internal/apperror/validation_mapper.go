package apperror

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	caser := cases.Title(language.English)
	return caser.String(s)
}

// MapValidationError turns a gin binding error into a VALIDATION_ERROR that
// names the first offending field.
func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		e := errs[0]
		field := formatFieldName(e.Field())

		switch e.Tag() {
		case "required":
			return Validation("%s is required", field)
		case "oneof":
			return Validation("%s must be one of: %s", field, e.Param())
		default:
			return Validation("%s is invalid", field)
		}
	}

	return Wrap(err, CodeValidation, "Invalid request payload", ErrValidation.HTTPStatus)
}
