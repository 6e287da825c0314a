package contextutils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// IsValidURL checks if a string is an absolute URL using go-playground/validator
func IsValidURL(raw string) bool {
	return validate.Var(raw, "url") == nil
}

// ValidateStruct runs the `validate` struct tags of v and converts failures into an
// ErrValidationFailed AppError listing the offending fields.
func ValidateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return WrapError(err, "validation could not run")
	}

	fields := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, fe.Namespace()+" ("+fe.Tag()+")")
	}

	return NewAppErrorWithCause(
		ErrorCodeValidationFailed,
		SeverityWarn,
		"Validation failed",
		strings.Join(fields, ", "),
		err,
	)
}
