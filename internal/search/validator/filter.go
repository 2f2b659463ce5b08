package validator

import (
	"errors"
	"fmt"
	"time"

	"buslane/pkg/logger"
	"buslane/pkg/model"

	"github.com/go-playground/validator/v10"
)

type FilterValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewFilterValidator(log *logger.Logger) *FilterValidator {
	validate := validator.New()

	// future holds for time.Time fields strictly after now. Searching a
	// window that already started can only return stale availability.
	_ = validate.RegisterValidation("future", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return t.After(time.Now())
	})

	return &FilterValidator{
		validate: validate,
		logger:   log,
	}
}

// Validate reports every violation of the filter at once. Callers apply
// sort defaults before validation, never after.
func (v *FilterValidator) Validate(filter *model.SearchFilter) error {
	if err := v.validate.Struct(filter); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid object id", err.Field())
		case "future":
			message = fmt.Sprintf("%s must be in the future", err.Field())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "gtefield":
			message = fmt.Sprintf("%s must not be below %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of [%s]", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
