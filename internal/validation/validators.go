package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/taskfleet/eventd/internal/models"
)

// New creates a validator with the payload enum rules registered.
func New() *validator.Validate {
	v := validator.New()

	// These should never fail in normal operation
	if err := v.RegisterValidation("recurrence_type", validateRecurrenceType); err != nil {
		panic(fmt.Sprintf("failed to register recurrence_type validator: %v", err))
	}
	if err := v.RegisterValidation("priority", validatePriority); err != nil {
		panic(fmt.Sprintf("failed to register priority validator: %v", err))
	}

	return v
}

// validateRecurrenceType validates that a string is a valid RecurrenceType enum value
func validateRecurrenceType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.RecurrenceType(value) {
	case models.RecurrenceNone, models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceCustom:
		return true
	default:
		return false
	}
}

// validatePriority validates that a string is a valid Priority enum value
func validatePriority(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.Priority(value) {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		return true
	default:
		return false
	}
}

// ValidateRecurrenceType validates a RecurrenceType string value
func ValidateRecurrenceType(value string) error {
	switch models.RecurrenceType(value) {
	case models.RecurrenceNone, models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceCustom:
		return nil
	default:
		return fmt.Errorf("invalid recurrence_type: %s (must be 'none', 'daily', 'weekly', or 'custom')", value)
	}
}
