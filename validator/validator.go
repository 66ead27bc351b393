// Package validator checks request payloads before they reach the engine.
// Struct tags cover shape (go-playground/validator); the funcs add the checks
// that need a store lookup.
package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/JohnBravos/bookhub-manager/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs the struct tag rules and converts failures into the
// domain's ValidationError kind so they map to a 400.
func ValidateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return errors.Wrap(err, "invalid validation target")
		}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return model.NewDomainError(model.ErrValidation, "field %s failed on the %s rule", first.Field(), first.Tag())
		}
		return model.NewDomainError(model.ErrValidation, "invalid request payload")
	}
	return nil
}
