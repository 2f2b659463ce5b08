package validator

import (
	"errors"
	"time"

	"buslane/pkg/logger"
	"buslane/pkg/model"

	"github.com/go-playground/validator/v10"
)

type IntervalValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewIntervalValidator(log *logger.Logger) *IntervalValidator {
	return &IntervalValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// Validate checks the interval window. End must be strictly after start
// (zero-length windows reserve nothing under half-open semantics) and the
// start must not be in the past. Overlap with existing intervals is
// deliberately not a validation concern.
func (v *IntervalValidator) Validate(iv *model.CommitmentInterval) error {
	if err := v.validate.Struct(iv); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	if iv.StartTime.Before(time.Now()) {
		return ValidationErrors{{
			Field:   "StartTime",
			Message: "StartTime must not be in the past",
		}}
	}

	return nil
}
