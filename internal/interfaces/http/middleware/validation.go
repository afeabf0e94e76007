package middleware

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/tradebooks/backend/internal/domain/document"
	"github.com/tradebooks/backend/internal/domain/shared/valueobject"
	"github.com/tradebooks/backend/internal/interfaces/http/dto"
)

// SetupValidator configures gin's validator: JSON tag names in error
// messages and the custom domain tags.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine type")
	}

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("currency", validateCurrency); err != nil {
		return err
	}
	return v.RegisterValidation("doctype", validateDocType)
}

// validateCurrency accepts the supported ISO currency codes
func validateCurrency(fl validator.FieldLevel) bool {
	return valueobject.Currency(fl.Field().String()).IsSupported()
}

// validateDocType accepts the known document type discriminators
func validateDocType(fl validator.FieldLevel) bool {
	return document.DocumentType(fl.Field().String()).IsValid()
}

// FormatValidationErrors converts validator errors into response details
func FormatValidationErrors(err error) []dto.ValidationDetail {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []dto.ValidationDetail{{Field: "request", Message: err.Error()}}
	}

	details := make([]dto.ValidationDetail, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		details = append(details, dto.ValidationDetail{
			Field:   fieldError.Field(),
			Message: validationMessage(fieldError),
		})
	}
	return details
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a date in %s format", fe.Field(), fe.Param())
	case "currency":
		return fmt.Sprintf("%s must be a supported currency code", fe.Field())
	case "doctype":
		return fmt.Sprintf("%s must be a known document type", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
