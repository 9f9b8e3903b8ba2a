package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	availabilityerrors "mentorhub/internal/availability/errors"
	"mentorhub/pkg/logger"
	"mentorhub/pkg/model"

	"github.com/go-playground/validator/v10"
)

var timeOfDayRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type SlotValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewSlotValidator(log *logger.Logger) *SlotValidator {
	v := validator.New()

	if err := v.RegisterValidation("time_of_day", validateTimeOfDay); err != nil {
		log.Fatal("Failed to register 'time_of_day' validator", "error", err)
	}

	return &SlotValidator{
		validate: v,
		logger:   log,
	}
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	return timeOfDayRegex.MatchString(fl.Field().String())
}

// Validate checks a single slot. now anchors the past-date check; it is
// passed in so callers and tests agree on the clock.
func (v *SlotValidator) Validate(slot *model.AvailabilitySlot, now time.Time) error {
	if err := v.validate.Struct(slot); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	var errs ValidationErrors

	// HH:MM strings order correctly under lexical comparison.
	if slot.StartTime >= slot.EndTime {
		errs = append(errs, ValidationError{
			Field:   "EndTime",
			Message: availabilityerrors.ErrInvalidTimeRange.Error(),
		})
	}

	if slot.IsRecurring {
		if slot.DayOfWeek == nil {
			errs = append(errs, ValidationError{
				Field:   "DayOfWeek",
				Message: "day_of_week is required for recurring slots",
			})
		}
		if slot.SpecificDate != "" {
			errs = append(errs, ValidationError{
				Field:   "SpecificDate",
				Message: "specific_date must be empty for recurring slots",
			})
		}
	} else {
		if slot.SpecificDate == "" {
			errs = append(errs, ValidationError{
				Field:   "SpecificDate",
				Message: "specific_date is required for one-off slots",
			})
		} else if slot.SpecificDate < now.UTC().Format(model.DateLayout) {
			errs = append(errs, ValidationError{
				Field:   "SpecificDate",
				Message: availabilityerrors.ErrPastDate.Error(),
			})
		}
		if slot.DayOfWeek != nil {
			errs = append(errs, ValidationError{
				Field:   "DayOfWeek",
				Message: "day_of_week must be empty for one-off slots",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *SlotValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var result ValidationErrors
	for _, err := range errs {
		result = append(result, ValidationError{
			Field:   err.Field(),
			Message: messageForTag(err),
		})
	}
	return result
}

func messageForTag(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s", err.Param())
	case "time_of_day":
		return "must be in HH:MM format"
	case "datetime":
		return fmt.Sprintf("must be a date in %s format", err.Param())
	case "mongodb":
		return "must be a valid object id"
	default:
		return fmt.Sprintf("failed validation on '%s'", err.Tag())
	}
}
