package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RequestValidator adapts go-playground/validator to echo.Validator so
// handlers can call c.Validate on bound request bodies.
type RequestValidator struct {
	v *validator.Validate
}

// NewRequestValidator builds a validator that reports fields by their
// json names.
func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &RequestValidator{v: v}
}

// Validate runs struct validation and flattens the first failure into a
// client-facing message.
func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return errors.New(describe(verrs[0]))
	}
	return err
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "e164", "numeric":
		return fmt.Sprintf("%s must be a valid phone number", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
