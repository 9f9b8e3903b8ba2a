package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mentorhub/pkg/logger"
	"mentorhub/pkg/model"

	"github.com/go-playground/validator/v10"
)

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

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// ValidateRequest checks a new booking request. Struct tags cover shape;
// the checks below cover what tags cannot express.
func (v *BookingValidator) ValidateRequest(booking *model.Booking, now time.Time) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	var errs ValidationErrors

	if !booking.EndTime.After(booking.StartTime) {
		errs = append(errs, ValidationError{
			Field:   "EndTime",
			Message: "end_time must be after start_time",
		})
	}

	if !booking.StartTime.After(now) {
		errs = append(errs, ValidationError{
			Field:   "StartTime",
			Message: "start_time must be in the future",
		})
	}

	if booking.Mentor.ID == booking.Mentee.ID {
		errs = append(errs, ValidationError{
			Field:   "Mentee",
			Message: "a mentor cannot book a session with themselves",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateFeedback checks the rating and optional feedback text.
func (v *BookingValidator) ValidateFeedback(rating int, feedback string) error {
	var errs ValidationErrors

	if rating < 1 || rating > 5 {
		errs = append(errs, ValidationError{
			Field:   "Rating",
			Message: "rating must be between 1 and 5",
		})
	}
	if len(feedback) > 2000 {
		errs = append(errs, ValidationError{
			Field:   "Feedback",
			Message: "feedback must not exceed 2000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", err.Param())
	case "gtfield":
		return fmt.Sprintf("must be after %s", err.Param())
	case "mongodb":
		return "must be a valid object id"
	default:
		return fmt.Sprintf("failed validation on '%s'", err.Tag())
	}
}
