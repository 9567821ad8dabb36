package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"adaptive-voice/internal/api/errors"
)

// Validator interface for domain validation
type Validator interface {
	Validate() error
}

// ValidateRequest binds JSON and checks both struct tags and domain rules.
func ValidateRequest(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		validationErrors := make(map[string]string)

		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrs {
				field := strings.ToLower(fieldError.Field())

				switch fieldError.Tag() {
				case "required":
					validationErrors[field] = "is required"
				case "min", "gte":
					validationErrors[field] = "is too small"
				case "max", "lte":
					validationErrors[field] = "is too large"
				case "oneof":
					validationErrors[field] = "must be one of the allowed values"
				default:
					validationErrors[field] = "is invalid"
				}
			}
		} else {
			validationErrors["request"] = "invalid JSON format"
		}

		return errors.NewValidationError("Validation failed", validationErrors)
	}

	if validator, ok := req.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return err
		}
	}

	return nil
}
