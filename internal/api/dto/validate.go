package dto

import (
	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/citizen-feedback-service/pkg/util"
)

var validate = validator.New()

// Validate runs struct tag validation and converts failures into the
// standard validation error with per-field details.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	details := make(map[string]any, len(validationErrs))
	for _, fieldErr := range validationErrs {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return apperrors.NewValidationError("invalid payload", details)
}
