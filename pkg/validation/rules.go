package validation

import (
	"time"

	"github.com/go-playground/validator/v10"

	"calibrify/pkg/constants"
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("interval_type", isIntervalType); err != nil {
		return err
	}
	if err := v.RegisterValidation("date_only", isDateOnly); err != nil {
		return err
	}
	return nil
}

// isIntervalType - days | weeks | months | years
func isIntervalType(fl validator.FieldLevel) bool {
	return constants.IntervalType(fl.Field().String()).IsValid()
}

// isDateOnly - "2006-01-02"
func isDateOnly(fl validator.FieldLevel) bool {
	_, err := time.Parse(constants.DateLayout, fl.Field().String())
	return err == nil
}
