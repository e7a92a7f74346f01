// Package validator adapts go-playground validation to echo's Validator hook.
package validator

import (
	playground "github.com/go-playground/validator/v10"
)

// CustomValidator wraps a validator instance for echo
type CustomValidator struct {
	validate *playground.Validate
}

// New creates the echo request validator
func New() *CustomValidator {
	return &CustomValidator{
		validate: playground.New(),
	}
}

// Validate validates a bound request struct against its tags
func (cv *CustomValidator) Validate(i any) error {
	return cv.validate.Struct(i)
}
