package handler

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator adapts go-playground/validator to Echo's Validator
// interface so request DTOs can declare their rules with struct tags.
type CustomValidator struct {
	validate *validator.Validate
}

// NewValidator returns a validator ready to plug into echo.Echo.
func NewValidator() *CustomValidator {
	return &CustomValidator{validate: validator.New()}
}

// Validate implements echo.Validator.
func (v *CustomValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
