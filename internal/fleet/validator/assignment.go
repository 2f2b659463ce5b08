package validator

import (
	"errors"

	"buslane/pkg/logger"
	"buslane/pkg/model"

	"github.com/go-playground/validator/v10"
)

type AssignmentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAssignmentValidator(log *logger.Logger) *AssignmentValidator {
	return &AssignmentValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// Validate checks an assignment's fields. An inverted band (min > max)
// passes: the write path stores whatever the carrier sent, and the search
// path simply never matches it.
func (v *AssignmentValidator) Validate(a *model.Assignment) error {
	if err := v.validate.Struct(a); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}
