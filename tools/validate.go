package tools

import (
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateInput checks the request struct tags, so that every tool
// rejects missing or out of range scalars the same way.
func ValidateInput(req any) error {
	err := validate.Struct(req)
	if err != nil {
		return errors.WithMessage(err, "invalid request")
	}
	return nil
}
