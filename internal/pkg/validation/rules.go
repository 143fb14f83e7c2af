package validation

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/edulearn/internal/pkg/schedule"
)

var (
	// PhonePattern accepts digits with optional leading + and separators.
	PhonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,18}[0-9]$`)
	// ClockPattern matches HH:MM.
	ClockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// RegisterRules adds the custom tags used by request DTOs:
//
//	phone: PhonePattern
//	hhmm:  HH:MM time of day on a string field
//	weekday: 0 (Monday) to 6 (Sunday)
func RegisterRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"phone": func(fl validator.FieldLevel) bool {
			return PhonePattern.MatchString(fl.Field().String())
		},
		"hhmm": func(fl validator.FieldLevel) bool {
			return ClockPattern.MatchString(fl.Field().String())
		},
		"weekday": func(fl validator.FieldLevel) bool {
			return schedule.Weekday(fl.Field().Int()).Valid()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validation: %w", tag, err)
		}
	}
	return nil
}
