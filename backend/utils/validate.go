package utils

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs the validator over a request DTO and flattens the
// result into field -> tag messages suitable for ValidationError.
func ValidateStruct(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range validationErrors {
			errors[fieldErr.Field()] = "failed on " + fieldErr.Tag()
		}
	} else {
		errors["_"] = err.Error()
	}
	return errors
}
