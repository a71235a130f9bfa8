// Package validators adapts go-playground/validator to Echo's
// Validator interface so handlers can call c.Validate on bound
// request structs.
package validators

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps a single validator instance shared by all requests.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a CustomValidator for e.Validator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate runs struct-tag validation on i.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
